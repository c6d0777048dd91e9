package database

import (
	"context"
	"path/filepath"
	"testing"
)

// testDB opens a throwaway database in a temp directory.
func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadOutputStates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.SaveOutputState(ctx, "relay1", true); err != nil {
		t.Fatalf("SaveOutputState() error = %v", err)
	}
	if err := db.SaveOutputState(ctx, "relay2", false); err != nil {
		t.Fatalf("SaveOutputState() error = %v", err)
	}

	states, err := db.LoadOutputStates(ctx)
	if err != nil {
		t.Fatalf("LoadOutputStates() error = %v", err)
	}

	if len(states) != 2 {
		t.Fatalf("LoadOutputStates() returned %d states, want 2", len(states))
	}
	if !states["relay1"] {
		t.Error("relay1 = false, want true")
	}
	if states["relay2"] {
		t.Error("relay2 = true, want false")
	}
}

func TestSaveOutputStateUpsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.SaveOutputState(ctx, "relay1", true); err != nil {
		t.Fatalf("SaveOutputState() error = %v", err)
	}
	if err := db.SaveOutputState(ctx, "relay1", false); err != nil {
		t.Fatalf("SaveOutputState() error = %v", err)
	}

	states, err := db.LoadOutputStates(ctx)
	if err != nil {
		t.Fatalf("LoadOutputStates() error = %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("LoadOutputStates() returned %d states, want 1", len(states))
	}
	if states["relay1"] {
		t.Error("relay1 = true after upsert to false")
	}
}

func TestLoadOutputStatesEmpty(t *testing.T) {
	db := testDB(t)

	states, err := db.LoadOutputStates(context.Background())
	if err != nil {
		t.Fatalf("LoadOutputStates() error = %v", err)
	}
	if len(states) != 0 {
		t.Errorf("LoadOutputStates() returned %d states, want 0", len(states))
	}
}

func TestHealthCheck(t *testing.T) {
	db := testDB(t)
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
