package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// WriteMode controls which stored rows a write replaces.
type WriteMode string

const (
	// ModeAppend adds rows without dedup.
	ModeAppend WriteMode = "append"
	// ModeReplaceAll drops every stored row of the table first.
	ModeReplaceAll WriteMode = "replace_all"
	// ModeReplaceYear drops stored rows of the write's year first.
	ModeReplaceYear WriteMode = "replace_year"
)

// ErrCorruptPayload is returned when a stored payload is not valid JSON.
var ErrCorruptPayload = errors.New("corrupt stored payload")

// Record is one stored row of a logical table.
type Record struct {
	Table       string
	Year        int
	Key         string
	PayloadJSON string
	PayloadHash string
	IngestedAt  time.Time
}

// Write is a single table mutation. A batch of writes commits atomically.
type Write struct {
	Table   string
	Mode    WriteMode
	Year    int
	Records []Record
}

func (w Write) Validate() error {
	if w.Table == "" {
		return fmt.Errorf("table name is required")
	}
	switch w.Mode {
	case ModeAppend, ModeReplaceAll:
	case ModeReplaceYear:
		for _, record := range w.Records {
			if record.Year != w.Year {
				return fmt.Errorf("table %s: record year %d does not match replaced year %d", w.Table, record.Year, w.Year)
			}
		}
	default:
		return fmt.Errorf("table %s: unknown write mode %q", w.Table, w.Mode)
	}
	return nil
}

// NewRecord serializes a row into a stored record with a stable payload hash.
func NewRecord(table string, year int, key string, row any) (Record, error) {
	raw, err := sonic.ConfigStd.Marshal(row)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s row key=%s: %w", table, key, err)
	}
	return RecordFromJSON(table, year, key, raw), nil
}

// RecordFromJSON wraps an already-encoded payload.
func RecordFromJSON(table string, year int, key string, raw []byte) Record {
	sum := sha256.Sum256(raw)
	return Record{
		Table:       table,
		Year:        year,
		Key:         key,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
	}
}

// Encode turns typed rows into records. yearOf and keyOf may be nil.
func Encode[T any](table string, rows []T, yearOf func(T) int, keyOf func(int, T) string) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		year := 0
		if yearOf != nil {
			year = yearOf(row)
		}
		key := fmt.Sprintf("%s:%d", table, i)
		if keyOf != nil {
			key = keyOf(i, row)
		}
		record, err := NewRecord(table, year, key, row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Decode parses stored payloads into typed rows.
func Decode[T any](records []Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, record := range records {
		var row T
		if err := sonic.UnmarshalString(record.PayloadJSON, &row); err != nil {
			return nil, fmt.Errorf("%w: table=%s key=%s: %v", ErrCorruptPayload, record.Table, record.Key, err)
		}
		out = append(out, row)
	}
	return out, nil
}
