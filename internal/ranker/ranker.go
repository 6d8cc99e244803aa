// Package ranker orders candidate answers by confidence.
package ranker

import (
	"sort"

	"curio-queries/internal/models"
)

// DefaultTopN is the number of answers shown to the user
const DefaultTopN = 3

// Rank returns at most n answers sorted by descending score. Equal scores
// keep their input order. Duplicate answer texts are not merged and
// candidates is left unmodified.
func Rank(candidates []models.Answer, n int) []models.Answer {
	if n <= 0 || len(candidates) == 0 {
		return []models.Answer{}
	}

	sorted := make([]models.Answer, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
