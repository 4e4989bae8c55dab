package sector

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/socialconnect-core/pkg/textnorm"
)

// Address is a raw street line split into its street name and house number.
type Address struct {
	Street string `json:"street"`
	Number string `json:"number"`
}

// SansAdresse is the street reported for homeless or address-less records.
const SansAdresse = "Sans Adresse"

var (
	houseNumberRe    = regexp.MustCompile(`(\d+)(?:[\s/]|$|\s*boîte|\s*B\d|\s*A\d|\s*étage)`)
	trailingNumRe    = regexp.MustCompile(`\d+[\s/].*$`)
	numberSpanRe     = regexp.MustCompile(`\d+-\d+`)
	trailingSpanRe   = regexp.MustCompile(`\s+\d+-\d+.*$`)
	streetPrefixRe   = regexp.MustCompile(`^(rue|r\.|avenue|av\.|boulevard|bd\.|bld\.|chaussee|ch\.|place|pl\.|square|sq\.)\s+`)
	streetParticleRe = regexp.MustCompile(`^(de|du|des|de la|d'|van|van de|van den|van der)\s+`)
)

// CleanAddress splits a raw address into street and house number.
//
//	"Chaussée de Mons 500"  -> {"Chaussée de Mons", "500"}
//	"Rue Bara 12 boîte 3"   -> {"Rue Bara", "12"}
//	"Place de la Vaillance" -> {"Place de la Vaillance", ""}
//	"SDF"                   -> {"Sans Adresse", ""}
func CleanAddress(raw string) Address {
	if raw == "" {
		return Address{}
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "sans adresse") || strings.Contains(lower, "sdf") {
		return Address{Street: SansAdresse}
	}

	street := raw
	var number string
	if m := houseNumberRe.FindStringSubmatch(raw); m != nil {
		number = m[1]
		if idx := strings.Index(raw, number); idx > 0 {
			street = strings.TrimSpace(raw[:idx])
		}
	}

	street = strings.TrimSpace(trailingNumRe.ReplaceAllString(street, ""))
	if numberSpanRe.MatchString(street) {
		street = strings.TrimSpace(trailingSpanRe.ReplaceAllString(street, ""))
	}
	return Address{Street: street, Number: number}
}

// NormalizeStreet reduces a street name to the form matched against sector
// keywords: normalized text without the street-type prefix, the leading
// particle, digits and punctuation ("Rue de la Clinique" -> "la clinique").
func NormalizeStreet(street string) string {
	s := textnorm.Normalize(street)
	if s == "" {
		return ""
	}
	s = streetPrefixRe.ReplaceAllString(s, "")
	s = streetParticleRe.ReplaceAllString(s, "")
	return textnorm.NormalizeAddress(s)
}
