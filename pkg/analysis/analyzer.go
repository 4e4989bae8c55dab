// CLAUDE:SUMMARY Batch keyword analysis: runs both detectors over every stored user on a worker pool and persists new detections.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/hazyhaar/socialconnect-core/pkg/tagger"
)

// Store is the persistence the analyzer needs.
type Store interface {
	ListUsers(ctx context.Context, f store.Filter) ([]*store.User, error)
	AddDetections(ctx context.Context, userID string, ps []store.Problematique, as []store.Action) error
}

// TaggerSource hands out the current tagger. *catalog.Registry satisfies it.
type TaggerSource interface {
	Tagger() *tagger.Tagger
}

// Options select the users to analyze.
type Options struct {
	ServiceID string `json:"service_id"`
	DryRun    bool   `json:"dry_run"`
}

// UserReport lists what was detected for one user.
type UserReport struct {
	UserID            string                 `json:"user_id"`
	Nom               string                 `json:"nom"`
	Prenom            string                 `json:"prenom"`
	NewProblematiques []tagger.Problematique `json:"new_problematiques"`
	NewActions        []tagger.Action        `json:"new_actions"`
}

// Report summarizes a batch run. Users holds only modified users, in
// listing order.
type Report struct {
	ServiceID         string       `json:"service_id,omitempty"`
	DryRun            bool         `json:"dry_run"`
	Analyzed          int          `json:"analyzed"`
	Modified          int          `json:"modified"`
	NewProblematiques int          `json:"new_problematiques"`
	NewActions        int          `json:"new_actions"`
	Users             []UserReport `json:"users"`
}

// Analyzer runs the keyword detectors over stored users.
type Analyzer struct {
	store   Store
	tags    TaggerSource
	logger  *slog.Logger
	workers int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithWorkers sets the pool size. Zero or negative keeps GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New creates an Analyzer.
func New(st Store, tags TaggerSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:   st,
		tags:    tags,
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// SourceText is the text the detectors read for a user.
func SourceText(u *store.User) string {
	return tagger.SourceText(u.NotesGenerales, u.Remarques, u.InformationImportante)
}

type detectJob struct {
	user   *store.User
	tagger *tagger.Tagger
}

type detectResult struct {
	report UserReport
}

func (r *detectResult) GetError() error { return nil }

func (j *detectJob) Execute(ctx context.Context) Result {
	text := SourceText(j.user)
	return &detectResult{report: UserReport{
		UserID:            j.user.ID,
		Nom:               j.user.Nom,
		Prenom:            j.user.Prenom,
		NewProblematiques: j.tagger.DetectProblematiques(text, j.user.ProblematiqueTypes()),
		NewActions:        j.tagger.DetectActions(text, j.user.ActionTypes()),
	}}
}

// Run analyzes every user matching opts and, unless DryRun, stores the new
// detections. The tagger is read once per run.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*Report, error) {
	users, err := a.store.ListUsers(ctx, store.Filter{ServiceID: opts.ServiceID})
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	a.logger.Info("analysis started", "users", len(users), "service", opts.ServiceID, "dry_run", opts.DryRun)

	tg := a.tags.Tagger()
	jobs := make([]Job, len(users))
	for i, u := range users {
		jobs[i] = &detectJob{user: u, tagger: tg}
	}
	results := NewPool(a.workers).Run(ctx, jobs)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	report := &Report{
		ServiceID: opts.ServiceID,
		DryRun:    opts.DryRun,
		Analyzed:  len(users),
		Users:     []UserReport{},
	}
	for _, res := range results {
		ur := res.(*detectResult).report
		if len(ur.NewProblematiques) == 0 && len(ur.NewActions) == 0 {
			continue
		}
		report.Modified++
		report.NewProblematiques += len(ur.NewProblematiques)
		report.NewActions += len(ur.NewActions)
		report.Users = append(report.Users, ur)

		if opts.DryRun {
			continue
		}
		if err := a.store.AddDetections(ctx, ur.UserID, toStoreProblematiques(ur.NewProblematiques), toStoreActions(ur.NewActions)); err != nil {
			return nil, fmt.Errorf("analysis: save user %s: %w", ur.UserID, err)
		}
		a.logger.Debug("detections saved", "user", ur.UserID,
			"problematiques", len(ur.NewProblematiques), "actions", len(ur.NewActions))
	}

	a.logger.Info("analysis finished", "analyzed", report.Analyzed, "modified", report.Modified,
		"new_problematiques", report.NewProblematiques, "new_actions", report.NewActions)
	return report, nil
}

func toStoreProblematiques(ps []tagger.Problematique) []store.Problematique {
	out := make([]store.Problematique, len(ps))
	for i, p := range ps {
		out[i] = store.Problematique{Type: p.Type, Description: p.Description}
	}
	return out
}

func toStoreActions(as []tagger.Action) []store.Action {
	out := make([]store.Action, len(as))
	for i, a := range as {
		out[i] = store.Action{Type: a.Type, Description: a.Description, Date: a.Date}
	}
	return out
}
