package catalog

import (
	"os"
	"testing"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/sector"
)

func TestRegistry_LoadDefaults(t *testing.T) {
	reg := NewRegistry(Options{})
	if reg.Snapshot() != nil {
		t.Fatal("snapshot before Load should be nil")
	}
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := reg.Sectors().Classify(sector.Record{AddressStreet: "Chaussée de Mons 500"})
	if got.FinalSector != "Vaillance" {
		t.Errorf("Classify = %+v", got)
	}
	if ps := reg.Tagger().DetectProblematiques("Dossier CPAS", nil); len(ps) != 1 {
		t.Errorf("DetectProblematiques = %+v", ps)
	}

	info := reg.Info()
	if info.Version != "builtin" || len(info.Sectors) != 8 || info.Problematiques != 17 || info.Actions != 15 {
		t.Errorf("Info = %+v", info)
	}
	if len(info.ProblematiqueTypes) != 17 || len(info.ActionTypes) != 15 {
		t.Errorf("types = %v, %v", info.ProblematiqueTypes, info.ActionTypes)
	}
	if info.CachedResults != 1 {
		t.Errorf("CachedResults = %d, want 1", info.CachedResults)
	}
}

func TestRegistry_Reload(t *testing.T) {
	path := writeCatalog(t, `
sectors:
  - sector: Nord
    keywords: [bara]
`)
	reg := NewRegistry(Options{Path: path, CacheTTL: time.Minute})
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reg.Sectors().Classify(sector.Record{AddressStreet: "Rue Bara 3"}); got.FinalSector != "Nord" {
		t.Fatalf("before reload: %+v", got)
	}

	if err := os.WriteFile(path, []byte("sectors:\n  - sector: Sud\n    keywords: [bara]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := reg.Sectors().Classify(sector.Record{AddressStreet: "Rue Bara 3"}); got.FinalSector != "Sud" {
		t.Fatalf("after reload: %+v", got)
	}
}

func TestRegistry_ReloadKeepsSnapshotOnError(t *testing.T) {
	path := writeCatalog(t, "sectors:\n  - sector: Nord\n    keywords: [bara]\n")
	reg := NewRegistry(Options{Path: path})
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := reg.Snapshot()

	bad := "street_ranges:\n  rue x:\n    - {min: 10, max: 1, sector: A}\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reg.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if reg.Snapshot() != before {
		t.Fatal("failed reload replaced the snapshot")
	}
}

func TestRegistry_DirectMappings(t *testing.T) {
	reg := NewRegistry(Options{DirectMappings: true})
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := reg.Sectors().Classify(sector.Record{AddressStreet: "Rue Wayez"})
	if got.Source != sector.SourceDirect || got.FinalSector != "Vaillance" {
		t.Errorf("Classify = %+v", got)
	}
	if !reg.Info().DirectMappings {
		t.Error("Info should report direct mappings")
	}
}
