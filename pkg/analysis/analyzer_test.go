package analysis

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*store.Store, *catalog.Registry) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "analysis.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := catalog.NewRegistry(catalog.Options{Clock: func() time.Time { return fixedNow }})
	if err := reg.Load(); err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	return st, reg
}

func seed(t *testing.T, st *store.Store) (dupont, martin, petit *store.User) {
	t.Helper()
	ctx := context.Background()
	dupont = &store.User{Nom: "Dupont", ServiceID: "mediation-locale", NotesGenerales: "Appel au CPAS,", Remarques: "dossier clôturé"}
	martin = &store.User{Nom: "Martin", ServiceID: "mediation-locale", NotesGenerales: "rien à signaler"}
	petit = &store.User{Nom: "Petit", ServiceID: "autre", InformationImportante: "Dossier CPAS"}
	for _, u := range []*store.User{dupont, martin, petit} {
		if err := st.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.CreateProblematique(ctx, &store.Problematique{UserID: petit.ID, Type: "CPAS"}); err != nil {
		t.Fatal(err)
	}
	return dupont, martin, petit
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_DryRun(t *testing.T) {
	st, reg := setup(t)
	dupont, _, petit := seed(t, st)
	an := New(st, reg, WithWorkers(4), quiet())

	first, err := an.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.Analyzed != 3 || first.Modified != 2 {
		t.Fatalf("report = %+v", first)
	}
	if first.NewProblematiques != 2 || first.NewActions != 4 {
		t.Errorf("counters = %d problematiques, %d actions", first.NewProblematiques, first.NewActions)
	}
	if first.Users[0].UserID != dupont.ID || first.Users[1].UserID != petit.ID {
		t.Errorf("users not in listing order: %+v", first.Users)
	}
	if got := first.Users[1].NewActions; len(got) != 1 || got[0].Type != "Document" || !got[0].Date.Equal(fixedNow) {
		t.Errorf("petit actions = %+v", got)
	}

	second, err := an.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("dry runs differ:\n%+v\n%+v", first, second)
	}

	u, err := st.GetUser(context.Background(), dupont.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Problematiques) != 0 || len(u.Actions) != 0 {
		t.Errorf("dry run persisted detections: %+v", u)
	}
}

func TestRun_Persists(t *testing.T) {
	st, reg := setup(t)
	dupont, _, _ := seed(t, st)
	an := New(st, reg, WithWorkers(2), quiet())

	report, err := an.Run(context.Background(), Options{ServiceID: "mediation-locale"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Analyzed != 2 || report.Modified != 1 {
		t.Fatalf("report = %+v", report)
	}

	u, err := st.GetUser(context.Background(), dupont.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Problematiques) != 2 || len(u.Actions) != 3 {
		t.Fatalf("stored %d problematiques, %d actions", len(u.Problematiques), len(u.Actions))
	}
	for _, a := range u.Actions {
		if !a.Date.Equal(fixedNow) {
			t.Errorf("action %s date = %v", a.Type, a.Date)
		}
	}

	again, err := an.Run(context.Background(), Options{ServiceID: "mediation-locale"})
	if err != nil {
		t.Fatal(err)
	}
	if again.Modified != 0 {
		t.Errorf("second run should find nothing new, got %+v", again)
	}
}

func TestSourceText(t *testing.T) {
	u := &store.User{NotesGenerales: "a", InformationImportante: "c"}
	if got := SourceText(u); got != "a c" {
		t.Errorf("SourceText = %q", got)
	}
}

type countJob struct{ n *int32 }

type countResult struct{}

func (countResult) GetError() error { return nil }

func (j countJob) Execute(context.Context) Result {
	atomic.AddInt32(j.n, 1)
	return countResult{}
}

func TestPool_Run(t *testing.T) {
	var n int32
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = countJob{&n}
	}
	results := NewPool(3).Run(context.Background(), jobs)
	if len(results) != 50 || atomic.LoadInt32(&n) != 50 {
		t.Fatalf("ran %d jobs, %d results", n, len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d missing", i)
		}
	}
}

func TestPool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var n int32
	jobs := []Job{countJob{&n}, countJob{&n}}
	NewPool(0).Run(ctx, jobs)
	if got := atomic.LoadInt32(&n); got != 0 {
		t.Errorf("cancelled pool ran %d jobs", got)
	}
}
