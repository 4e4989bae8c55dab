// CLAUDE:SUMMARY HTTP routes for sector classification, keyword detection, per-user problematiques and actions, stats and batch analysis.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/socialconnect-core/pkg/analysis"
	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/kit"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
)

// Options tune the router.
type Options struct {
	Logger *slog.Logger
	// RateLimit is the per-client request rate; zero disables limiting.
	RateLimit float64
	Burst     int
	// RateLimitIdle is how long an idle client's bucket is kept (default 5m).
	RateLimitIdle time.Duration
	// Workers sizes the batch analysis pool.
	Workers int
}

// NewRouter returns an http.Handler with all SocialConnect API routes.
func NewRouter(reg *catalog.Registry, st *store.Store, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	an := analysis.New(st, reg, analysis.WithLogger(opts.Logger), analysis.WithWorkers(opts.Workers))
	logged := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Logging(opts.Logger, name), kit.Recover())(ep)
	}

	mux := http.NewServeMux()
	h := &handler{
		getUser:             logged("get_user", getUserEndpoint(reg, st)),
		reconcile:           logged("reconcile_problematiques", reconcileEndpoint(st)),
		createProblematique: logged("create_problematique", createProblematiqueEndpoint(st)),
		createAction:        logged("create_action", createActionEndpoint(st)),
		usersBySector:       logged("users_by_sector", usersBySectorEndpoint(reg, st)),
		classifySector:      logged("classify_sector", classifySectorEndpoint(reg)),
		detect:              logged("detect", detectEndpoint(reg)),
		analyze:             logged("analyze", analyzeEndpoint(an)),
		catalog:             catalogEndpoint(reg),
		reg:                 reg,
		logger:              opts.Logger,
	}

	mux.HandleFunc("GET /v1/users/{id}", h.handleGetUser)
	mux.HandleFunc("PUT /v1/users/{id}/problematiques", h.handleReconcile)
	mux.HandleFunc("POST /v1/users/{id}/problematiques", h.handleCreateProblematique)
	mux.HandleFunc("POST /v1/users/{id}/actions", h.handleCreateAction)
	mux.HandleFunc("GET /v1/stats/users-by-sector", h.handleUsersBySector)
	mux.HandleFunc("GET /v1/classify/sector", methodNotAllowed)
	mux.HandleFunc("POST /v1/classify/sector", h.handleClassifySector)
	mux.HandleFunc("GET /v1/detect", methodNotAllowed)
	mux.HandleFunc("POST /v1/detect", h.handleDetect)
	mux.HandleFunc("GET /v1/analyze", methodNotAllowed)
	mux.HandleFunc("POST /v1/analyze", h.handleAnalyze)
	mux.HandleFunc("GET /v1/catalog", h.handleCatalog)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	var root http.Handler = requestContext(mux)
	if opts.RateLimit > 0 {
		root = newClientLimiter(opts.RateLimit, opts.Burst, opts.RateLimitIdle).middleware(root)
	}
	return cors(root)
}

type handler struct {
	getUser             kit.Endpoint
	reconcile           kit.Endpoint
	createProblematique kit.Endpoint
	createAction        kit.Endpoint
	usersBySector       kit.Endpoint
	classifySector      kit.Endpoint
	detect              kit.Endpoint
	analyze             kit.Endpoint
	catalog             kit.Endpoint
	reg                 *catalog.Registry
	logger              *slog.Logger
}

// --- users ---

func (h *handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	resp, err := h.getUser(r.Context(), &getUserReq{ID: id})
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	req := reconcileReq{UserID: r.PathValue("id")}
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.reconcile(r.Context(), &req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCreateProblematique(w http.ResponseWriter, r *http.Request) {
	req := createProblematiqueReq{UserID: r.PathValue("id")}
	if !decodeBody(w, r, &req.Problematique) {
		return
	}
	resp, err := h.createProblematique(r.Context(), &req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *handler) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	req := createActionReq{UserID: r.PathValue("id")}
	if !decodeBody(w, r, &req.Action) {
		return
	}
	resp, err := h.createAction(r.Context(), &req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// --- stats ---

func (h *handler) handleUsersBySector(w http.ResponseWriter, r *http.Request) {
	req := &usersBySectorReq{}
	if v := r.URL.Query().Get("annee"); v != "" {
		annee, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid annee")
			return
		}
		req.Annee = annee
	}
	resp, err := h.usersBySector(r.Context(), req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- classify ---

func (h *handler) handleClassifySector(w http.ResponseWriter, r *http.Request) {
	var req classifySectorReq
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.classifySector(r.Context(), &req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- detect ---

func (h *handler) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectReq
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.detect(r.Context(), &req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- batch analysis ---

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Options
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.analyze(r.Context(), &req)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- catalog ---

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	resp, err := h.catalog(r.Context(), nil)
	if err != nil {
		h.writeEndpointError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Sectors        int    `json:"sectors"`
	Problematiques int    `json:"problematiques"`
	Actions        int    `json:"actions"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := h.reg.Info()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		Version:        info.Version,
		Sectors:        len(info.Sectors),
		Problematiques: info.Problematiques,
		Actions:        info.Actions,
	})
}

// --- helpers ---

// decodeBody reads a JSON body of at most 64 KiB into v. An empty body
// leaves v at its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeEndpointError maps caller errors to 4xx with their message. Anything
// else is logged and answered with a generic 500.
func (h *handler) writeEndpointError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", kit.GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestContext stores the request id and the caller's service in the
// request context.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := kit.WithTransport(r.Context(), "http")
		ctx = kit.WithRequestID(ctx, id)
		if svc := r.Header.Get("X-Service-ID"); svc != "" {
			ctx = kit.WithServiceID(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Service-ID, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
