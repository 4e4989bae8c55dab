package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/analysis"
	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/sector"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	reg    *catalog.Registry
	st     *store.Store
	dupont *store.User
	martin *store.User
	petit  *store.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := catalog.NewRegistry(catalog.Options{Clock: func() time.Time { return fixedNow }})
	if err := reg.Load(); err != nil {
		t.Fatalf("registry.Load: %v", err)
	}

	f := &fixture{
		reg:    reg,
		st:     st,
		dupont: &store.User{ServiceID: "mediation-locale", Nom: "Dupont", AdresseRue: "Chaussée de Mons 500", NotesGenerales: "Dossier CPAS", Annee: 2024},
		martin: &store.User{ServiceID: "mediation-locale", Nom: "Martin", AdresseRue: "Rue Bara 12", Annee: 2023},
		petit:  &store.User{ServiceID: "autre", Nom: "Petit", AdresseRue: "Rue Bara 1", Annee: 2024},
	}
	if err := st.CreateUsers(context.Background(), []*store.User{f.dupont, f.martin, f.petit}); err != nil {
		t.Fatalf("CreateUsers: %v", err)
	}
	return f
}

func (f *fixture) router(opts Options) http.Handler {
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(f.reg, f.st, opts)
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestClassifySector(t *testing.T) {
	h := newFixture(t).router(Options{})

	tests := []struct {
		name   string
		body   string
		sector string
		source sector.Source
	}{
		{"range", `{"address_street":"Chaussée de Mons 500"}`, "Vaillance", sector.SourceRange},
		{"keyword", `{"address_street":"Rue Bara 12"}`, "Cureghem", sector.SourceKeyword},
		{"explicit", `{"explicit_sector":"parc","address_street":"Rue Bara 12"}`, "Parc", sector.SourceDirect},
		{"empty body", ``, sector.Unspecified, sector.SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/classify/sector", tt.body, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var res sector.Result
			decode(t, rec, &res)
			if res.FinalSector != tt.sector || res.Source != tt.source {
				t.Errorf("result = %+v, want %s/%s", res, tt.sector, tt.source)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	h := newFixture(t).router(Options{})

	rec := do(t, h, http.MethodPost, "/v1/detect",
		`{"notes":"Appel au CPAS, dossier clôturé","existing_problematiques":["Médiation"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res detectResponse
	decode(t, rec, &res)
	if len(res.Problematiques) != 1 || res.Problematiques[0].Type != "CPAS" {
		t.Errorf("problematiques = %+v", res.Problematiques)
	}
	var types []string
	for _, a := range res.Actions {
		types = append(types, a.Type)
		if !a.Date.Equal(fixedNow) {
			t.Errorf("action %s dated %v, want %v", a.Type, a.Date, fixedNow)
		}
	}
	if got := strings.Join(types, "|"); got != "Appel téléphonique|Document|Clôture dossier" {
		t.Errorf("actions = %s", got)
	}
}

func TestDetect_NoMatchReturnsEmptyArrays(t *testing.T) {
	h := newFixture(t).router(Options{})

	rec := do(t, h, http.MethodPost, "/v1/detect", `{"notes":"rien à signaler"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"problematiques":[]`) || !strings.Contains(body, `"actions":[]`) {
		t.Errorf("body = %s", body)
	}
}

func TestGetUser_AutoProblematiques(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{})

	rec := do(t, h, http.MethodGet, "/v1/users/"+f.dupont.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var u store.User
	decode(t, rec, &u)
	if len(u.Problematiques) != 1 {
		t.Fatalf("problematiques = %+v", u.Problematiques)
	}
	p := u.Problematiques[0]
	if p.Type != "CPAS" || !p.Auto || p.ID != "auto-"+f.dupont.ID+"-CPAS" || p.Description != autoDescription {
		t.Errorf("auto problematique = %+v", p)
	}
	if !p.DateSignalement.Equal(u.CreatedAt) {
		t.Errorf("date = %v, want created_at %v", p.DateSignalement, u.CreatedAt)
	}

	// Nothing was written back.
	stored, err := f.st.GetUser(context.Background(), f.dupont.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Problematiques) != 0 {
		t.Errorf("auto problematiques persisted: %+v", stored.Problematiques)
	}
}

func TestGetUser_StoredProblematiquesWin(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{})
	if err := f.st.CreateProblematique(context.Background(), &store.Problematique{UserID: f.dupont.ID, Type: "Logement"}); err != nil {
		t.Fatal(err)
	}

	rec := do(t, h, http.MethodGet, "/v1/users/"+f.dupont.ID, "", nil)
	var u store.User
	decode(t, rec, &u)
	if len(u.Problematiques) != 1 || u.Problematiques[0].Type != "Logement" || u.Problematiques[0].Auto {
		t.Errorf("problematiques = %+v", u.Problematiques)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{})

	if rec := do(t, h, http.MethodGet, "/v1/users/does-not-exist", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing user: status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/v1/users/"+f.petit.ID, "", map[string]string{"X-Service-ID": "mediation-locale"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("other service: status = %d", rec.Code)
	}
}

func TestCreateProblematiqueAndAction(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{})
	target := "/v1/users/" + f.martin.ID

	rec := do(t, h, http.MethodPost, target+"/problematiques", `{"type":"Logement","description":"Loyer impayé","auto":true}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("problematique: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var p store.Problematique
	decode(t, rec, &p)
	if p.ID == "" || p.UserID != f.martin.ID || p.Type != "Logement" || p.Auto {
		t.Errorf("problematique = %+v", p)
	}

	rec = do(t, h, http.MethodPost, target+"/actions", `{"type":"Appel téléphonique","date":"2025-03-14T09:30:00Z"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("action: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var a store.Action
	decode(t, rec, &a)
	if a.ID == "" || a.Type != "Appel téléphonique" || !a.Date.Equal(fixedNow) {
		t.Errorf("action = %+v", a)
	}

	u, err := f.st.GetUser(context.Background(), f.martin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Problematiques) != 1 || u.Problematiques[0].ID != p.ID {
		t.Errorf("stored problematiques = %+v", u.Problematiques)
	}
	if len(u.Actions) != 1 || u.Actions[0].ID != a.ID {
		t.Errorf("stored actions = %+v", u.Actions)
	}
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{})

	tests := []struct {
		name   string
		target string
		body   string
		header map[string]string
		code   int
	}{
		{"missing type", "/v1/users/" + f.martin.ID + "/problematiques", `{"description":"x"}`, nil, http.StatusBadRequest},
		{"action missing type", "/v1/users/" + f.martin.ID + "/actions", `{}`, nil, http.StatusBadRequest},
		{"unknown user", "/v1/users/nobody/actions", `{"type":"Document"}`, nil, http.StatusNotFound},
		{"other service", "/v1/users/" + f.petit.ID + "/problematiques", `{"type":"CPAS"}`, map[string]string{"X-Service-ID": "mediation-locale"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, tt.body, tt.header)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestReconcileProblematiques(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{})
	ctx := context.Background()
	target := "/v1/users/" + f.dupont.ID + "/problematiques"

	kept := &store.Problematique{UserID: f.dupont.ID, Type: "CPAS"}
	dropped := &store.Problematique{UserID: f.dupont.ID, Type: "Dette"}
	for _, p := range []*store.Problematique{kept, dropped} {
		if err := f.st.CreateProblematique(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	body := `{"problematiques":[{"id":"` + kept.ID + `","type":"Logement","description":"changé"},{"id":"auto-x-CPAS","type":"Santé"}]}`
	rec := do(t, h, http.MethodPut, target, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stats store.ReconcileStats
	decode(t, rec, &stats)
	if stats != (store.ReconcileStats{Created: 1, Updated: 1, Deleted: 1}) {
		t.Errorf("stats = %+v", stats)
	}

	u, err := f.st.GetUser(ctx, f.dupont.ID)
	if err != nil {
		t.Fatal(err)
	}
	types := map[string]string{}
	for _, p := range u.Problematiques {
		types[p.Type] = p.ID
	}
	if len(types) != 2 || types["Logement"] != kept.ID || types["Santé"] == "" {
		t.Errorf("problematiques = %+v", u.Problematiques)
	}

	rec = do(t, h, http.MethodPut, target, `{"problematiques":[{"type":""}]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty type: status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodPut, target, `{"problematiques":[]}`, map[string]string{"X-Service-ID": "autre"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("other service: status = %d", rec.Code)
	}
}

func TestUsersBySector(t *testing.T) {
	h := newFixture(t).router(Options{})

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   []sector.Stat
	}{
		{"all", "/v1/stats/users-by-sector", nil, []sector.Stat{{Name: "Cureghem", Value: 2}, {Name: "Vaillance", Value: 1}}},
		{"by year", "/v1/stats/users-by-sector?annee=2024", nil, []sector.Stat{{Name: "Cureghem", Value: 1}, {Name: "Vaillance", Value: 1}}},
		{"by service", "/v1/stats/users-by-sector", map[string]string{"X-Service-ID": "autre"}, []sector.Stat{{Name: "Cureghem", Value: 1}}},
		{"no match", "/v1/stats/users-by-sector?annee=1999", nil, []sector.Stat{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "", tt.header)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var got []sector.Stat
			decode(t, rec, &got)
			if len(got) != len(tt.want) {
				t.Fatalf("stats = %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("stats[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	for _, q := range []string{"annee=abc", "annee=-1"} {
		if rec := do(t, h, http.MethodGet, "/v1/stats/users-by-sector?"+q, "", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestAnalyze_DryRun(t *testing.T) {
	f := newFixture(t)
	h := f.router(Options{Workers: 2})

	rec := do(t, h, http.MethodPost, "/v1/analyze", `{"dry_run":true}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var rep analysis.Report
	decode(t, rec, &rep)
	if !rep.DryRun || rep.Analyzed != 3 || rep.Modified != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.NewProblematiques != 1 || rep.NewActions != 1 || rep.Users[0].UserID != f.dupont.ID {
		t.Errorf("report = %+v", rep)
	}

	stored, err := f.st.GetUser(context.Background(), f.dupont.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Problematiques) != 0 || len(stored.Actions) != 0 {
		t.Errorf("dry run persisted detections: %+v", stored)
	}
}

func TestAnalyze_ScopedByServiceHeader(t *testing.T) {
	h := newFixture(t).router(Options{})

	rec := do(t, h, http.MethodPost, "/v1/analyze", `{"dry_run":true}`, map[string]string{"X-Service-ID": "autre"})
	var rep analysis.Report
	decode(t, rec, &rep)
	if rep.ServiceID != "autre" || rep.Analyzed != 1 || rep.Modified != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestCatalogAndHealth(t *testing.T) {
	h := newFixture(t).router(Options{})

	rec := do(t, h, http.MethodGet, "/v1/health", "", nil)
	var health healthResponse
	decode(t, rec, &health)
	if health.Status != "ok" || health.Version != "builtin" || health.Sectors != 8 {
		t.Errorf("health = %+v", health)
	}
	if health.Problematiques != 17 || health.Actions != 15 {
		t.Errorf("health = %+v", health)
	}

	rec = do(t, h, http.MethodGet, "/v1/catalog", "", nil)
	var info catalog.Info
	decode(t, rec, &info)
	if len(info.Sectors) != 8 || info.DirectMappings {
		t.Errorf("catalog = %+v", info)
	}
	if len(info.ProblematiqueTypes) != 17 || len(info.ActionTypes) != 15 {
		t.Errorf("types = %v, %v", info.ProblematiqueTypes, info.ActionTypes)
	}
}

func TestRouter_Errors(t *testing.T) {
	h := newFixture(t).router(Options{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"GET on classify", http.MethodGet, "/v1/classify/sector", "", http.StatusMethodNotAllowed},
		{"GET on detect", http.MethodGet, "/v1/detect", "", http.StatusMethodNotAllowed},
		{"GET on analyze", http.MethodGet, "/v1/analyze", "", http.StatusMethodNotAllowed},
		{"invalid JSON", http.MethodPost, "/v1/detect", "{notes", http.StatusBadRequest},
		{"wrong field type", http.MethodPost, "/v1/classify/sector", `{"address_street":12}`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/v1/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body, nil)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestRouter_InternalErrorsAreGeneric(t *testing.T) {
	f := newFixture(t)
	var logs strings.Builder
	h := NewRouter(f.reg, f.st, Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	f.st.Close()

	rec := do(t, h, http.MethodGet, "/v1/users/"+f.dupont.ID, "", map[string]string{"X-Request-ID": "req-500"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "internal error" {
		t.Errorf("body = %v", body)
	}
	if !strings.Contains(logs.String(), "request_id=req-500") || !strings.Contains(logs.String(), "closed") {
		t.Errorf("log = %s", logs.String())
	}
}

func TestRouter_CORSAndRequestID(t *testing.T) {
	h := newFixture(t).router(Options{})

	rec := do(t, h, http.MethodOptions, "/v1/detect", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	rec = do(t, h, http.MethodGet, "/v1/health", "", map[string]string{"X-Request-ID": "req-42"})
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
	rec = do(t, h, http.MethodGet, "/v1/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id not generated")
	}
}

func TestRouter_RateLimit(t *testing.T) {
	h := newFixture(t).router(Options{RateLimit: 1, Burst: 1})

	first := do(t, h, http.MethodGet, "/v1/health", "", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	second := do(t, h, http.MethodGet, "/v1/health", "", nil)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", second.Header().Get("Retry-After"))
	}
}
