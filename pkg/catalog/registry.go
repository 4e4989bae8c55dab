package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/sector"
	"github.com/hazyhaar/socialconnect-core/pkg/tagger"
)

// Options control how a Registry builds its classifiers.
type Options struct {
	// Path of a catalog YAML file; empty means built-in tables.
	Path string
	// DirectMappings enables the exact-address override tier.
	DirectMappings bool
	// CacheTTL of sector results; zero keeps them until the next reload.
	CacheTTL time.Duration
	// Clock dates detected actions; nil means time.Now.
	Clock func() time.Time
}

// Snapshot is an immutable, compiled view of one catalog.
type Snapshot struct {
	Catalog    *Catalog
	Classifier *sector.Classifier
	Sectors    *sector.CachedClassifier
	Tagger     *tagger.Tagger
	LoadedAt   time.Time
}

// Registry holds the current snapshot and swaps it atomically on reload.
type Registry struct {
	mu   sync.RWMutex
	opts Options
	snap *Snapshot
}

// NewRegistry creates an empty registry. Call Load before use.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts}
}

// Load reads the catalog and compiles a new snapshot. On error the previous
// snapshot stays in place.
func (r *Registry) Load() error {
	cat := Default()
	if r.opts.Path != "" {
		var err error
		cat, err = Load(r.opts.Path)
		if err != nil {
			return err
		}
	}
	snap, err := compile(cat, r.opts)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return nil
}

// Reload re-reads the catalog file (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

func compile(cat *Catalog, opts Options) (*Snapshot, error) {
	var sopts []sector.Option
	if opts.DirectMappings {
		sopts = append(sopts, sector.WithDirectMappings(cat.DirectMappings))
	}
	cls := sector.New(cat.Sectors, cat.StreetRanges, sopts...)

	var topts []tagger.Option
	if opts.Clock != nil {
		topts = append(topts, tagger.WithClock(opts.Clock))
	}
	tg, err := tagger.New(cat.Problematiques, cat.Actions, topts...)
	if err != nil {
		return nil, fmt.Errorf("compile keyword tables: %w", err)
	}

	return &Snapshot{
		Catalog:    cat,
		Classifier: cls,
		Sectors:    sector.NewCached(cls, opts.CacheTTL),
		Tagger:     tg,
		LoadedAt:   time.Now(),
	}, nil
}

// Snapshot returns the current snapshot, or nil before the first Load.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Sectors returns the cached sector resolver of the current snapshot.
func (r *Registry) Sectors() sector.Resolver {
	return r.Snapshot().Sectors
}

// Tagger returns the keyword tagger of the current snapshot.
func (r *Registry) Tagger() *tagger.Tagger {
	return r.Snapshot().Tagger
}

// Info summarizes the loaded tables.
type Info struct {
	Version            string    `json:"version"`
	Sectors            []string  `json:"sectors"`
	SectorKeywords     int       `json:"sector_keywords"`
	RangedStreets      int       `json:"ranged_streets"`
	DirectMappings     bool      `json:"direct_mappings"`
	Problematiques     int       `json:"problematiques"`
	Actions            int       `json:"actions"`
	ProblematiqueTypes []string  `json:"problematique_types"`
	ActionTypes        []string  `json:"action_types"`
	CachedResults      int       `json:"cached_results"`
	LoadedAt           time.Time `json:"loaded_at"`
}

// Info returns a summary of the current snapshot.
func (r *Registry) Info() Info {
	s := r.Snapshot()
	if s == nil {
		return Info{}
	}
	pTypes, aTypes := s.Tagger.Types()
	return Info{
		Version:            s.Catalog.Version,
		Sectors:            s.Classifier.Sectors(),
		SectorKeywords:     s.Classifier.KeywordCount(),
		RangedStreets:      len(s.Catalog.StreetRanges),
		DirectMappings:     r.opts.DirectMappings,
		Problematiques:     len(s.Catalog.Problematiques),
		Actions:            len(s.Catalog.Actions),
		ProblematiqueTypes: pTypes,
		ActionTypes:        aTypes,
		CachedResults:      s.Sectors.Len(),
		LoadedAt:           s.LoadedAt,
	}
}
