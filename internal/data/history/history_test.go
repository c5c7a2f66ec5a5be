package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStore_SaveAndLoadRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first, err := store.SaveRun(Run{
		Timestamp: base,
		Source:    "specs/engine.sl2",
		Duration:  3 * time.Millisecond,
		Artifacts: 2,
	})
	if err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Fatalf("expected generated uuid, got %q: %v", first.ID, err)
	}

	second, err := store.SaveRun(Run{
		Timestamp: base.Add(time.Minute),
		Source:    "specs/brake.sl2",
		Diagnostics: []Diagnostic{
			{Kind: "EmptyInterval", Line: 3, Column: 10, Message: `interval "[9,8]" is empty`},
			{Kind: "MissingBinding", Line: 4, Column: 6, Message: "missing p"},
		},
	})
	if err != nil {
		t.Fatalf("save second run: %v", err)
	}

	runs, err := store.RecentRuns(0)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].OK() || !runs[1].OK() {
		t.Fatalf("unexpected OK flags: %+v", runs)
	}
	if got := runs[0].Diagnostics; len(got) != 2 || got[0].Kind != "EmptyInterval" || got[1].Column != 6 {
		t.Fatalf("diagnostics did not roundtrip: %+v", got)
	}
	if runs[1].Duration != 3*time.Millisecond || runs[1].Artifacts != 2 {
		t.Fatalf("run fields did not roundtrip: %+v", runs[1])
	}
	if !runs[1].Timestamp.Equal(base) {
		t.Fatalf("expected timestamp %v, got %v", base, runs[1].Timestamp)
	}

	limited, err := store.RecentRuns(1)
	if err != nil {
		t.Fatalf("load limited runs: %v", err)
	}
	if len(limited) != 1 || limited[0].Source != "specs/brake.sl2" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}
}

func TestStore_Prune(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.SaveRun(Run{
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			Source:      "a.sl2",
			Diagnostics: []Diagnostic{{Kind: "SyntaxError", Line: 1, Column: 1, Message: "x"}},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.Prune(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	var orphans int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM run_diagnostics`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 2 {
		t.Fatalf("expected diagnostics of pruned runs to cascade, got %d rows", orphans)
	}
}

func TestAdapter_PrunesAfterSave(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	adapter := NewAdapter(store, 1)
	defer func() { _ = adapter.Close() }()

	for _, src := range []string{"a.sl2", "b.sl2"} {
		if _, err := adapter.SaveRun(Run{Source: src}); err != nil {
			t.Fatalf("save %s: %v", src, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := adapter.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Source != "b.sl2" {
		t.Fatalf("expected only the newest run, got %+v", runs)
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite, padded to look like a header block"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}
