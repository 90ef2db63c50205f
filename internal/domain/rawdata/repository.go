package rawdata

import "context"

// Repository is the logical table store shared by every pipeline stage.
//
// Read of a table that was never written returns no rows and no error.
// MaxYear reports ok=false for such tables.
type Repository interface {
	Write(ctx context.Context, writes ...Write) error
	Read(ctx context.Context, table string) ([]Record, error)
	MaxYear(ctx context.Context, table string) (year int, ok bool, err error)
}
