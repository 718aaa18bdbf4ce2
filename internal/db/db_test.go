package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testManager creates a manager rooted in a temporary data directory
func testManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := NewManager("sqlite", dir, nil)
	t.Cleanup(func() {
		m.Close(nil)
	})
	return m, dir
}

// testDB opens a standalone database for testing
func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// testStore opens a state store in a temporary data directory
func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := OpenStore("sqlite", dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store, dir
}

func TestOpenStore_MigratesOnce(t *testing.T) {
	store, dir := testStore(t)
	if store.Path() != filepath.Join(dir, StoreFile) {
		t.Errorf("Path = %q", store.Path())
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening finds the schema already applied
	again, err := OpenStore("sqlite", dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer again.Close()

	var count int
	if err := again.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("schema_migrations rows = %d, want 1", count)
	}
	if err := again.Optimize(); err != nil {
		t.Errorf("Optimize failed: %v", err)
	}
}

func TestStore_Settings(t *testing.T) {
	store, _ := testStore(t)

	got, err := store.GetSetting(SettingLastDirectory)
	if err != nil {
		t.Fatalf("GetSetting on missing key failed: %v", err)
	}
	if got != "" {
		t.Errorf("missing setting = %q, want empty", got)
	}

	if err := store.SetSetting(SettingLastDirectory, "/docs"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSetting(SettingLastDirectory, "/reports"); err != nil {
		t.Fatal(err)
	}
	got, err = store.GetSetting(SettingLastDirectory)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/reports" {
		t.Errorf("last directory = %q, want /reports", got)
	}
}

func TestOpen_LeavesSchemaToCaller(t *testing.T) {
	database := testDB(t)

	rows, err := database.Select(`SELECT name FROM sqlite_master WHERE type = 'table'`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("fresh database has tables %v, want none", rows)
	}
	if _, err := database.Execute(`CREATE TABLE settings (id INTEGER PRIMARY KEY, theme TEXT)`, nil); err != nil {
		t.Errorf("creating a settings table failed: %v", err)
	}
}

func TestExecuteSelect(t *testing.T) {
	database := testDB(t)

	if _, err := database.Execute(`CREATE TABLE recent (id INTEGER PRIMARY KEY, path TEXT NOT NULL, pages INTEGER, zoom REAL)`, nil); err != nil {
		t.Fatalf("create table failed: %v", err)
	}

	res, err := database.Execute(`INSERT INTO recent (path, pages, zoom) VALUES (?, ?, ?)`, []any{"/docs/a.pdf", float64(12), 1.25})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if res.RowsAffected != 1 || res.LastInsertID != 1 {
		t.Errorf("result = %+v, want 1 row, id 1", res)
	}

	rows, err := database.Select(`SELECT id, path, pages, zoom, typeof(pages) AS pages_type FROM recent`, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row["path"] != "/docs/a.pdf" {
		t.Errorf("path = %v", row["path"])
	}
	if row["pages"] != int64(12) {
		t.Errorf("pages = %#v, want int64(12)", row["pages"])
	}
	if row["pages_type"] != "integer" {
		t.Errorf("pages stored as %v, want integer", row["pages_type"])
	}
	if row["zoom"] != 1.25 {
		t.Errorf("zoom = %#v, want 1.25", row["zoom"])
	}

	empty, err := database.Select(`SELECT * FROM recent WHERE id = ?`, []any{float64(99)})
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty select = %#v, want empty non-nil slice", empty)
	}
}

func TestNormalizeArgs(t *testing.T) {
	got := normalizeArgs([]any{float64(3), 2.5, "x", nil, true})
	want := []any{int64(3), 2.5, "x", nil, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestManager_LoadResolvesInDataDir(t *testing.T) {
	m, dir := testManager(t)

	handle, err := m.Load("sqlite:folio.db")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if handle != "sqlite:folio.db" {
		t.Errorf("handle = %q", handle)
	}
	if _, err := os.Stat(filepath.Join(dir, "folio.db")); err != nil {
		t.Errorf("database file not created in data dir: %v", err)
	}

	// Loading again reuses the connection
	if _, err := m.Load("sqlite:folio.db"); err != nil {
		t.Fatal(err)
	}
	if urls := m.URLs(); len(urls) != 1 {
		t.Errorf("URLs = %v, want one connection", urls)
	}
}

func TestManager_URLs(t *testing.T) {
	m, dir := testManager(t)

	tests := []struct {
		url     string
		wantErr error
	}{
		{"sqlite::memory:", nil},
		{"sqlite:" + filepath.Join(dir, "abs.db"), nil},
		{"sqlite:nested/dir/x.db", nil},
		{"postgres://localhost/db", ErrUnsupportedURL},
		{"sqlite:", ErrUnsupportedURL},
		{"sqlite:" + StoreFile, ErrUnsupportedURL},
		{"sqlite:" + filepath.Join(dir, StoreFile), ErrUnsupportedURL},
		{"sqlite:nested/../" + StoreFile, ErrUnsupportedURL},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := m.Load(tt.url)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Load(%q) failed: %v", tt.url, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load(%q) error = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestManager_ExecuteSelectClose(t *testing.T) {
	m, _ := testManager(t)
	url, err := m.Load("sqlite::memory:")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Execute(url, `CREATE TABLE notes (body TEXT)`, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Execute(url, `INSERT INTO notes (body) VALUES (?)`, []any{"hello"}); err != nil {
		t.Fatal(err)
	}
	rows, err := m.Select(url, `SELECT body FROM notes`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0]["body"] != "hello" {
		t.Errorf("rows = %v", rows)
	}

	if err := m.Optimize(); err != nil {
		t.Errorf("Optimize failed: %v", err)
	}

	closed, err := m.Close(&url)
	if err != nil || !closed {
		t.Errorf("Close = (%v, %v), want (true, nil)", closed, err)
	}
	closed, _ = m.Close(&url)
	if closed {
		t.Error("second Close reported closing something")
	}

	if _, err := m.Select(url, `SELECT 1`, nil); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Select after close error = %v, want ErrNotLoaded", err)
	}
}

func TestManager_CloseAll(t *testing.T) {
	m, _ := testManager(t)
	for _, u := range []string{"sqlite:a.db", "sqlite:b.db"} {
		if _, err := m.Load(u); err != nil {
			t.Fatal(err)
		}
	}

	closed, err := m.Close(nil)
	if err != nil || !closed {
		t.Errorf("Close(nil) = (%v, %v)", closed, err)
	}
	if urls := m.URLs(); len(urls) != 0 {
		t.Errorf("URLs after Close(nil) = %v", urls)
	}
	if closed, _ := m.Close(nil); closed {
		t.Error("Close(nil) on empty manager reported closing something")
	}
}
