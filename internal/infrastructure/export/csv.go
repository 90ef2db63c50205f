package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/riskibarqy/cfb-predictor/internal/domain/feature"
	"github.com/valyala/bytebufferpool"
)

var keyColumns = []string{"season", "week", "game_id", "start_date", "team_id", "team", "opponent_id", "opponent", "win"}

// CSVWriter writes the feature artifact as one CSV file. The file is
// replaced atomically so readers never see a partial table.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Export(ctx context.Context, artifact feature.Artifact) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := Encode(ctx, buf, artifact); err != nil {
		return "", err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".features-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp export file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return "", fmt.Errorf("replace export file: %w", err)
	}
	return w.path, nil
}

// Encode writes the header row then one row per artifact row. Null numeric
// values are empty cells.
func Encode(ctx context.Context, buf *bytebufferpool.ByteBuffer, artifact feature.Artifact) error {
	cw := csv.NewWriter(buf)
	columns := artifact.Columns()

	header := make([]string, 0, len(keyColumns)+len(columns))
	header = append(header, keyColumns...)
	header = append(header, columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for i, row := range artifact.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record = record[:0]
		record = append(record,
			strconv.Itoa(row.Season),
			strconv.Itoa(row.Week),
			strconv.FormatInt(row.GameID, 10),
			row.StartDate.UTC().Format(time.RFC3339),
			formatID(row.TeamID),
			row.Team,
			formatID(row.OpponentID),
			row.Opponent,
			formatFloat(row.Win),
		)
		for _, name := range artifact.Numeric {
			if v, ok := row.Values[name]; ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		for _, name := range artifact.Categorical {
			record = append(record, row.Categories[name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row game=%d: %w", row.GameID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
