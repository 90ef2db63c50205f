package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PIPELINE_END_YEAR", "2023")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("unexpected StoreDriver: %q", cfg.StoreDriver)
	}
	if cfg.StartYear != 2004 || cfg.EndYear != 2023 {
		t.Fatalf("unexpected year range: %d-%d", cfg.StartYear, cfg.EndYear)
	}
	if len(cfg.Conferences) != 5 || cfg.Conferences[1] != "B1G" {
		t.Fatalf("unexpected conferences: %v", cfg.Conferences)
	}
	if cfg.CFBDCallDelay != 500*time.Millisecond {
		t.Fatalf("unexpected CFBDCallDelay: %s", cfg.CFBDCallDelay)
	}
	if !cfg.UseWatermark {
		t.Fatalf("expected UseWatermark=true by default")
	}
}

func TestLoad_YearRangeValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PIPELINE_START_YEAR", "2022")
	t.Setenv("PIPELINE_END_YEAR", "2020")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when start year is after end year")
	}
}

func TestLoad_RejectsUnknownSeasonType(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PIPELINE_SEASON_TYPES", "regular,spring")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown season type")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	t.Run("memory accepted", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("STORE_DRIVER", "Memory")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreDriver != StoreDriverMemory {
			t.Fatalf("expected memory driver, got=%q", cfg.StoreDriver)
		}
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("STORE_DRIVER", "duckdb")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_DRIVER")
		}
	})
}

func TestLoad_CircuitBreakerBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CFBD_CIRCUIT_FAILURE_COUNT", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for CFBD_CIRCUIT_FAILURE_COUNT=0")
	}
}
