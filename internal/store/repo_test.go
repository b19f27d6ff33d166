package store

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMarketCapParam(t *testing.T) {
	if got := marketCapParam(decimal.Decimal{}); got != nil {
		t.Errorf("marketCapParam(zero) = %v, want nil (stored as NULL)", got)
	}

	got := marketCapParam(decimal.RequireFromString("2950000.50"))
	s, ok := got.(string)
	if !ok {
		t.Fatalf("marketCapParam returned %T, want string", got)
	}
	if s != "2950000.5" {
		t.Errorf("marketCapParam = %q, want %q", s, "2950000.5")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migration files")
	}

	// Every up migration needs a matching down migration.
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			ups++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("migrations: %d up, %d down, want matched non-zero pairs", ups, downs)
	}
}
