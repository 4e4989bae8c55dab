// CLAUDE:SUMMARY Keyword tagger inferring problématiques and actions from case notes, one detection per category, deduplicated against existing types.
package tagger

import (
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/textnorm"
)

// Problematique is a detected issue category.
type Problematique struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Keyword     string `json:"keyword"`
}

// Action is a detected follow-up action, dated at detection time.
type Action struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Keyword     string    `json:"keyword"`
	Date        time.Time `json:"date"`
}

// Tagger detects categories in free-text notes. It is immutable once built
// and safe for concurrent use.
type Tagger struct {
	problematiques []compiledCategory
	actions        []compiledCategory
	now            func() time.Time
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithClock sets the clock used to date detected actions.
func WithClock(now func() time.Time) Option {
	return func(t *Tagger) {
		if now != nil {
			t.now = now
		}
	}
}

// New compiles the keyword tables.
func New(problematiques, actions []Category, opts ...Option) (*Tagger, error) {
	p, err := compileCategories(problematiques)
	if err != nil {
		return nil, fmt.Errorf("problematiques: %w", err)
	}
	a, err := compileCategories(actions)
	if err != nil {
		return nil, fmt.Errorf("actions: %w", err)
	}
	t := &Tagger{problematiques: p, actions: a, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// NewDefault builds a Tagger over the built-in tables.
func NewDefault(opts ...Option) *Tagger {
	t, err := New(DefaultProblematiques(), DefaultActions(), opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// SourceText joins the non-empty note fields of a record with single spaces.
func SourceText(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// DetectProblematiques returns the problématique categories revealed by notes
// that are not already covered by one of the existing types.
func (t *Tagger) DetectProblematiques(notes string, existing []string) []Problematique {
	out := []Problematique{}
	for _, d := range t.detect(t.problematiques, notes, existing) {
		out = append(out, Problematique{Type: d.typ, Description: describe(d.keyword), Keyword: d.keyword})
	}
	return out
}

// DetectActions returns the action types revealed by notes that are not
// already covered by one of the existing types.
func (t *Tagger) DetectActions(notes string, existing []string) []Action {
	out := []Action{}
	dets := t.detect(t.actions, notes, existing)
	if len(dets) == 0 {
		return out
	}
	now := t.now()
	for _, d := range dets {
		out = append(out, Action{Type: d.typ, Description: describe(d.keyword), Keyword: d.keyword, Date: now})
	}
	return out
}

type detection struct {
	typ     string
	keyword string
}

func (t *Tagger) detect(cats []compiledCategory, notes string, existing []string) []detection {
	text := textnorm.Normalize(notes)
	if text == "" {
		return nil
	}
	known := make([]string, 0, len(existing))
	for _, e := range existing {
		if n := textnorm.Normalize(e); n != "" {
			known = append(known, n)
		}
	}

	var dets []detection
	for i := range cats {
		kw, ok := cats[i].match(text)
		if !ok {
			continue
		}
		if covered(known, cats[i].normType) {
			continue
		}
		dets = append(dets, detection{typ: cats[i].typ, keyword: kw})
	}
	return dets
}

// covered reports whether a known type contains, or is contained in, typ.
func covered(known []string, typ string) bool {
	for _, k := range known {
		if strings.Contains(k, typ) || strings.Contains(typ, k) {
			return true
		}
	}
	return false
}

func describe(keyword string) string {
	return `Détecté automatiquement via mot-clé "` + keyword + `"`
}

// Types returns the problématique and action type names in scan order.
func (t *Tagger) Types() (problematiques, actions []string) {
	for _, c := range t.problematiques {
		problematiques = append(problematiques, c.typ)
	}
	for _, c := range t.actions {
		actions = append(actions, c.typ)
	}
	return problematiques, actions
}
