// CLAUDE:SUMMARY Sector cascade (explicit -> house-number range -> street keyword -> default) over immutable, pre-normalized tables.
package sector

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/socialconnect-core/pkg/textnorm"
)

// Source tells which tier of the cascade produced a result.
type Source string

const (
	SourceDirect  Source = "direct"
	SourceRange   Source = "range"
	SourceKeyword Source = "keyword"
	SourceDefault Source = "default"
)

// Confidence of a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceNone   Confidence = "none"
)

// Record is the part of a case record the classifier looks at.
type Record struct {
	ExplicitSector string `json:"explicit_sector,omitempty"`
	AddressStreet  string `json:"address_street,omitempty"`
}

// Result is the outcome of a classification.
type Result struct {
	FinalSector     string     `json:"final_sector"`
	Source          Source     `json:"source"`
	Confidence      Confidence `json:"confidence"`
	OriginalAddress string     `json:"original_address,omitempty"`
	MatchedKeyword  string     `json:"matched_keyword,omitempty"`
}

// Resolver classifies records. Classifier and CachedClassifier implement it.
type Resolver interface {
	Classify(Record) Result
}

type keyword struct {
	raw  string
	norm string
}

type compiledMapping struct {
	sector   string
	keywords []keyword
}

// Classifier resolves a sector for a record. It is immutable once built and
// safe for concurrent use.
type Classifier struct {
	mappings []compiledMapping
	ranges   map[string][]Range
	direct   map[string]string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDirectMappings enables exact-address overrides, consulted on the raw
// address after the range tier and before the keyword tier.
func WithDirectMappings(m map[string]string) Option {
	return func(c *Classifier) {
		if len(m) == 0 {
			return
		}
		c.direct = make(map[string]string, len(m))
		for addr, sector := range m {
			if key := textnorm.Normalize(addr); key != "" {
				c.direct[key] = sector
			}
		}
	}
}

// New builds a Classifier. Keywords and street names are normalized here,
// once, so that accented and plain spellings behave the same.
func New(mappings []Mapping, ranges map[string][]Range, opts ...Option) *Classifier {
	c := &Classifier{
		mappings: make([]compiledMapping, 0, len(mappings)),
		ranges:   make(map[string][]Range, len(ranges)),
	}
	for _, m := range mappings {
		cm := compiledMapping{sector: m.Sector, keywords: make([]keyword, 0, len(m.Keywords))}
		for _, raw := range m.Keywords {
			if norm := normalizeKeyword(raw); norm != "" {
				cm.keywords = append(cm.keywords, keyword{raw: raw, norm: norm})
			}
		}
		c.mappings = append(c.mappings, cm)
	}
	for street, rs := range ranges {
		key := textnorm.Normalize(street)
		c.ranges[key] = append(c.ranges[key], rs...)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault builds a Classifier over the built-in tables.
func NewDefault(opts ...Option) *Classifier {
	return New(DefaultMappings(), DefaultStreetRanges(), opts...)
}

// normalizeKeyword folds case and accents. Keywords without digits also lose
// their hyphens and punctuation, like the streets they are matched against;
// range labels such as "mons 453-859" are left as written.
func normalizeKeyword(raw string) string {
	kw := textnorm.Normalize(raw)
	if strings.IndexFunc(kw, unicode.IsDigit) >= 0 {
		return kw
	}
	return textnorm.CollapseNoise(kw)
}

// Classify runs the cascade. It never fails: absent or unusable input
// yields the Unspecified sector with source "default".
func (c *Classifier) Classify(r Record) Result {
	if strings.TrimSpace(r.ExplicitSector) != "" {
		return Result{
			FinalSector: NormalizeSectorDisplay(r.ExplicitSector),
			Source:      SourceDirect,
			Confidence:  ConfidenceHigh,
		}
	}

	if r.AddressStreet != "" {
		addr := CleanAddress(r.AddressStreet)

		if sector, ok := c.SectorFromRange(addr.Street, addr.Number); ok {
			return Result{
				FinalSector:     sector,
				Source:          SourceRange,
				Confidence:      ConfidenceHigh,
				OriginalAddress: r.AddressStreet,
			}
		}

		if c.direct != nil {
			if sector, ok := c.direct[textnorm.Normalize(r.AddressStreet)]; ok {
				return Result{
					FinalSector:     sector,
					Source:          SourceDirect,
					Confidence:      ConfidenceHigh,
					OriginalAddress: r.AddressStreet,
				}
			}
		}

		if sector, kw, ok := c.MatchKeyword(addr.Street); ok {
			return Result{
				FinalSector:     NormalizeSectorDisplay(sector),
				Source:          SourceKeyword,
				Confidence:      ConfidenceMedium,
				OriginalAddress: r.AddressStreet,
				MatchedKeyword:  kw,
			}
		}
	}

	return Result{
		FinalSector: Unspecified,
		Source:      SourceDefault,
		Confidence:  ConfidenceNone,
	}
}

// SectorFromRange looks the street up in the range table and returns the
// sector of the first range containing number. A number that does not parse
// as an integer never matches.
func (c *Classifier) SectorFromRange(street, number string) (string, bool) {
	n, err := strconv.Atoi(number)
	if err != nil {
		return "", false
	}
	for _, r := range c.ranges[textnorm.Normalize(street)] {
		if n >= r.Min && n <= r.Max {
			return r.Sector, true
		}
	}
	return "", false
}

// MatchKeyword returns the first sector, in table order, one of whose
// keywords is a substring of the normalized street. The keyword is
// returned as authored.
func (c *Classifier) MatchKeyword(street string) (sector, kw string, ok bool) {
	ns := NormalizeStreet(street)
	if ns == "" {
		return "", "", false
	}
	for _, m := range c.mappings {
		for _, k := range m.keywords {
			if strings.Contains(ns, k.norm) {
				return m.sector, k.raw, true
			}
		}
	}
	return "", "", false
}

// Sectors returns the sector names of the keyword table in scan order.
func (c *Classifier) Sectors() []string {
	out := make([]string, len(c.mappings))
	for i, m := range c.mappings {
		out[i] = m.sector
	}
	return out
}

// KeywordCount returns the number of usable keywords across all sectors.
func (c *Classifier) KeywordCount() int {
	n := 0
	for _, m := range c.mappings {
		n += len(m.keywords)
	}
	return n
}

// NormalizeSectorDisplay fixes the casing of a sector name for display.
// Known sectors get their canonical spelling ("la roue" -> "La Roue"),
// anything else is capitalized ("HORS ZONE" -> "Hors zone").
func NormalizeSectorDisplay(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unspecified
	}
	lower := strings.ToLower(s)
	if canonical, ok := canonicalSectors[lower]; ok {
		return canonical
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
