package tagger

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/hazyhaar/socialconnect-core/pkg/textnorm"
)

// shortKeyword is the rune length at or below which a keyword must match a whole word.
const shortKeyword = 3

// compiledKeyword is one authored keyword and its regex over normalized text.
type compiledKeyword struct {
	raw string
	re  *regexp.Regexp
}

// compiledCategory holds the keywords of a category in scan order.
type compiledCategory struct {
	typ      string
	normType string
	keywords []compiledKeyword
}

// compileCategories normalizes every keyword and builds its matcher:
// `\bkw\b` for short keywords, `\bkw\w*` otherwise.
func compileCategories(cats []Category) ([]compiledCategory, error) {
	out := make([]compiledCategory, 0, len(cats))
	for _, cat := range cats {
		if cat.Type == "" {
			return nil, fmt.Errorf("category with empty type")
		}
		cc := compiledCategory{
			typ:      cat.Type,
			normType: textnorm.Normalize(cat.Type),
			keywords: make([]compiledKeyword, 0, len(cat.Keywords)),
		}
		for _, raw := range cat.Keywords {
			kw := textnorm.Normalize(raw)
			if kw == "" {
				continue
			}
			expr := `\b` + regexp.QuoteMeta(kw)
			if utf8.RuneCountInString(kw) <= shortKeyword {
				expr += `\b`
			} else {
				expr += `\w*`
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("category %q keyword %q: %w", cat.Type, raw, err)
			}
			cc.keywords = append(cc.keywords, compiledKeyword{raw: raw, re: re})
		}
		out = append(out, cc)
	}
	return out, nil
}

// match returns the first keyword of the category found in normalized text.
func (cc *compiledCategory) match(text string) (string, bool) {
	for _, k := range cc.keywords {
		if k.re.MatchString(text) {
			return k.raw, true
		}
	}
	return "", false
}
