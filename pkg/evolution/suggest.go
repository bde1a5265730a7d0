package evolution

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Match is a ranked hit from SearchNames.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SearchNames ranks the distinct stored names against query. An exact match
// scores 1.0, a substring match 0.95, everything else by normalized edit
// distance; weak hits are dropped. Ties keep table order.
func (r *Resolver) SearchNames(query string, limit int) []Match {
	q := normalize(query)
	if q == "" {
		return nil
	}
	var out []Match
	for _, name := range r.names {
		if score := nameScore(q, name); score > 0.3 {
			out = append(out, Match{Name: name, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Suggest returns close misses for a failed lookup, best first. The cutoff
// is stricter than SearchNames: a suggestion should look like a typo fix,
// not a browse result.
func (r *Resolver) Suggest(query string, limit int) []string {
	q := normalize(query)
	if q == "" {
		return nil
	}
	var hits []Match
	for _, name := range r.names {
		if score := nameScore(q, name); score >= 0.6 {
			hits = append(hits, Match{Name: name, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Name
	}
	return names
}

func nameScore(q, name string) float64 {
	n := strings.ToLower(name)
	if q == n {
		return 1.0
	}
	if strings.Contains(n, q) {
		return 0.95
	}
	dist := levenshtein.Distance(q, n, nil)
	max := len(q)
	if len(n) > max {
		max = len(n)
	}
	score := 1.0 - float64(dist)/float64(max)
	if score < 0 {
		return 0
	}
	return score
}
