package sector

import "sort"

// Stat is one bar of the users-by-sector chart.
type Stat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// CountBySector classifies every record and counts records per final sector.
// The result is sorted by count descending, then by name.
func CountBySector(res Resolver, records []Record) []Stat {
	counts := make(map[string]int)
	for _, r := range records {
		counts[res.Classify(r).FinalSector]++
	}

	stats := make([]Stat, 0, len(counts))
	for name, n := range counts {
		stats = append(stats, Stat{Name: name, Value: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Value != stats[j].Value {
			return stats[i].Value > stats[j].Value
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}
