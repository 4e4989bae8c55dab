package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func tempSourceDB(t *testing.T) *SourceDB {
	t.Helper()
	dir := t.TempDir()
	sdb, err := OpenSourceDB(filepath.Join(dir, "sources.db"))
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return sdb
}

func mustRegister(t *testing.T, sdb *SourceDB, srcs ...Source) {
	t.Helper()
	for _, src := range srcs {
		if err := sdb.Register(context.Background(), src); err != nil {
			t.Fatalf("Register %s: %v", src.Name, err)
		}
	}
}

func TestOpenSourceDB_CreatesTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	sdb, err := OpenSourceDB(path)
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	defer sdb.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	sources, err := sdb.List(context.Background())
	if err != nil {
		t.Fatalf("List on empty db: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected 0 sources, got %d", len(sources))
	}
}

func TestRegister_Defaults(t *testing.T) {
	sdb := tempSourceDB(t)
	mustRegister(t, sdb, Source{Name: "cpas", URL: "https://example.com/cpas.csv"})

	src, err := sdb.Get(context.Background(), "cpas")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if src.Format.Delimiter != "," || src.Format.Encoding != "utf-8" || src.Format.HasHeader {
		t.Errorf("format = %+v", src.Format)
	}
	if src.LastCheck != nil || src.LastImport != nil {
		t.Errorf("fresh source has history: %+v", src)
	}
}

func TestRegister_Upsert(t *testing.T) {
	sdb := tempSourceDB(t)
	ctx := context.Background()
	mustRegister(t, sdb, Source{Name: "cpas", URL: "https://example.com/v1.csv"})
	if err := sdb.UpdateCheck(ctx, "cpas", 200, ""); err != nil {
		t.Fatal(err)
	}

	mustRegister(t, sdb, Source{
		Name:   "cpas",
		URL:    "https://example.com/v2.csv",
		Format: Format{Delimiter: ";", Encoding: "windows-1252", HasHeader: true},
	})

	src, err := sdb.Get(ctx, "cpas")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if src.URL != "https://example.com/v2.csv" || src.Format.Delimiter != ";" || !src.Format.HasHeader {
		t.Errorf("source = %+v", src)
	}
	if src.LastStatus == nil || *src.LastStatus != 200 {
		t.Errorf("re-register dropped check history: %v", src.LastStatus)
	}
}

func TestRegister_Invalid(t *testing.T) {
	sdb := tempSourceDB(t)
	if err := sdb.Register(context.Background(), Source{Name: "x"}); err == nil {
		t.Fatal("expected error without url")
	}
}

func TestSetURL(t *testing.T) {
	sdb := tempSourceDB(t)
	ctx := context.Background()
	mustRegister(t, sdb, Source{Name: "a1", URL: "https://example.com/original"})

	if err := sdb.SetURL(ctx, "a1", "https://example.com/updated"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	src, err := sdb.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if src.URL != "https://example.com/updated" {
		t.Fatalf("expected updated URL, got %s", src.URL)
	}
}

func TestUnknownSource(t *testing.T) {
	sdb := tempSourceDB(t)
	ctx := context.Background()

	if _, err := sdb.Get(ctx, "nonexistent"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Get: %v", err)
	}
	if err := sdb.SetURL(ctx, "nonexistent", "https://example.com"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("SetURL: %v", err)
	}
	if err := sdb.Remove(ctx, "nonexistent"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Remove: %v", err)
	}
}

func TestUpdateCheck(t *testing.T) {
	sdb := tempSourceDB(t)
	ctx := context.Background()
	mustRegister(t, sdb, Source{Name: "a1", URL: "https://example.com/a1"})

	if err := sdb.UpdateCheck(ctx, "a1", 200, ""); err != nil {
		t.Fatalf("UpdateCheck: %v", err)
	}
	src, err := sdb.Get(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if src.LastStatus == nil || *src.LastStatus != 200 {
		t.Fatalf("expected last_status=200, got %v", src.LastStatus)
	}
	if src.LastCheck == nil || *src.LastCheck == 0 {
		t.Fatal("expected last_check to be set")
	}
	if src.LastError != nil {
		t.Fatalf("expected nil last_error, got %v", *src.LastError)
	}

	if err := sdb.UpdateCheck(ctx, "a1", 404, "not found"); err != nil {
		t.Fatalf("UpdateCheck with error: %v", err)
	}
	src, _ = sdb.Get(ctx, "a1")
	if src.LastStatus == nil || *src.LastStatus != 404 {
		t.Fatalf("expected last_status=404, got %v", src.LastStatus)
	}
	if src.LastError == nil || *src.LastError != "not found" {
		t.Fatalf("expected last_error='not found', got %v", src.LastError)
	}
}

func TestList_OrderAndRemove(t *testing.T) {
	sdb := tempSourceDB(t)
	ctx := context.Background()
	mustRegister(t, sdb,
		Source{Name: "z-last", URL: "https://example.com/z"},
		Source{Name: "a-first", URL: "https://example.com/a"},
	)

	sources, err := sdb.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sources) != 2 || sources[0].Name != "a-first" {
		t.Fatalf("sources = %+v", sources)
	}

	if err := sdb.Remove(ctx, "a-first"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	sources, _ = sdb.List(ctx)
	if len(sources) != 1 || sources[0].Name != "z-last" {
		t.Fatalf("after remove = %+v", sources)
	}
}

func TestImportSource(t *testing.T) {
	sdb := tempSourceDB(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "export.csv")
	data := "nom;prenom;rue\nDupont;Marie;Rue Bara 12\nMartin;Paul;Rue Wayez 3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	mustRegister(t, sdb, Source{Name: "export", URL: path, Format: Format{Delimiter: ";", HasHeader: true}})

	var w memWriter
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats, err := ImportSource(ctx, &w, sdb, "export", logger)
	if err != nil {
		t.Fatalf("ImportSource: %v", err)
	}
	if stats.Imported != 2 || len(w.users) != 2 || w.users[1].AdresseRue != "Rue Wayez 3" {
		t.Fatalf("stats = %+v, users = %d", stats, len(w.users))
	}

	src, err := sdb.Get(ctx, "export")
	if err != nil {
		t.Fatal(err)
	}
	if src.LastImport == nil || src.LastRows == nil || *src.LastRows != 2 {
		t.Errorf("import not recorded: %+v", src)
	}

	if _, err := ImportSource(ctx, &w, sdb, "missing", logger); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("missing source: %v", err)
	}
}
