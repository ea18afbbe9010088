package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeTempConfig(t, "conquest:\n  leader_mode: weaken\n  truce_duration: 50\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !cfg.WeakenMode() {
			t.Fatalf("expected weaken mode")
		}
		if cfg.Conquest.TruceDuration != 50 {
			t.Fatalf("expected truce duration 50, got %d", cfg.Conquest.TruceDuration)
		}
		if cfg.CyclePeriod != 100 {
			t.Fatalf("expected default cycle period, got %d", cfg.CyclePeriod)
		}
		if cfg.Economy.MinRewardPower != 10 {
			t.Fatalf("expected default min reward power, got %v", cfg.Economy.MinRewardPower)
		}
	})

	t.Run("unknown leader mode", func(t *testing.T) {
		path := writeTempConfig(t, "conquest:\n  leader_mode: vanish\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate offsets", func(t *testing.T) {
		path := writeTempConfig(t, "phases:\n  tribute: 60\n")
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "share offset") {
			t.Fatalf("expected shared offset error, got %v", err)
		}
	})

	t.Run("offset outside cycle", func(t *testing.T) {
		path := writeTempConfig(t, "cycle_period: 50\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("migration before elimination", func(t *testing.T) {
		path := writeTempConfig(t, "phases:\n  elimination: 12\n  migration: 11\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("rivals before promotion", func(t *testing.T) {
		path := writeTempConfig(t, "phases:\n  promotion: 45\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("spoil fraction out of range", func(t *testing.T) {
		path := writeTempConfig(t, "conquest:\n  leader_spoil_fraction: 1.5\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "economy: [\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestMarshalRoundTripKeepsValidity(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := writeTempConfig(t, string(data))
	if _, err := Load(path); err != nil {
		t.Fatalf("expected marshalled default to load, got %v", err)
	}
}

func TestOrderedSortsByOffset(t *testing.T) {
	ordered := Default().Phases.Ordered()
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Offset > ordered[i].Offset {
			t.Fatalf("phases out of order at %d: %v", i, ordered)
		}
	}
	if ordered[0].Name != "elimination" {
		t.Fatalf("expected elimination first, got %s", ordered[0].Name)
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ffa.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
