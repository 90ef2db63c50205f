package runlock

import (
	"context"
	"testing"
)

func TestLocal_SecondHolderIsRejectedUntilRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lock := NewLocal()

	release, ok, err := lock.TryLock(ctx, "pipeline")
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}

	if _, ok, _ := lock.TryLock(ctx, "pipeline"); ok {
		t.Fatalf("second lock must be rejected while held")
	}
	if _, ok, _ := lock.TryLock(ctx, "other"); !ok {
		t.Fatalf("unrelated key must be free")
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := release(ctx); err != nil {
		t.Fatalf("double release: %v", err)
	}
	if _, ok, _ := lock.TryLock(ctx, "pipeline"); !ok {
		t.Fatalf("lock must be free after release")
	}
}
