package app

import (
	"net/url"
	"strings"

	"github.com/riskibarqy/cfb-predictor/internal/config"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// MigrationDBURL is the connection string handed to the schema migrator.
func MigrationDBURL(cfg config.Config) string {
	return postgresDSN(cfg)
}

func postgresDSN(cfg config.Config) string {
	return normalizeDBURL(strings.TrimSpace(cfg.DBURL), cfg.DBDisablePreparedBinary)
}

// normalizeDBURL asks the driver for text results so transaction poolers
// that drop prepared statements between backends keep working. An explicit
// value in the URL wins.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Has(preparedBinaryParam) {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL reads the database name from URL or key=value DSNs.
func dbNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}
	for _, token := range strings.Fields(raw) {
		if key, value, ok := strings.Cut(token, "="); ok && key == "dbname" {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}
