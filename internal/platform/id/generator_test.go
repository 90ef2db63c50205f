package id

import (
	"strings"
	"testing"
	"time"
)

func TestRandomGenerator_SortsByCreationTime(t *testing.T) {
	clock := time.Date(2023, 11, 25, 19, 30, 0, 0, time.UTC)
	g := &RandomGenerator{now: func() time.Time { return clock }}

	first, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	clock = clock.Add(time.Millisecond)
	second, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if !strings.HasPrefix(first, "20231125T193000.000Z-") {
		t.Fatalf("unexpected id layout: %s", first)
	}
	if len(first) != len("20231125T193000.000Z-")+12 {
		t.Fatalf("unexpected id length: %s", first)
	}
	if first >= second {
		t.Fatalf("ids must sort by time: %s >= %s", first, second)
	}
}

func TestRandomGenerator_UniqueWithinSameInstant(t *testing.T) {
	g := &RandomGenerator{now: func() time.Time { return time.Unix(0, 0) }}
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		v, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate id %s", v)
		}
		seen[v] = struct{}{}
	}
}
