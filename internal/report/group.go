package report

import (
	"sort"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// Group is one strategic-context bucket of the report.
type Group struct {
	Key             string
	DevelopmentArea string
	Outcome         string
	Strategy        string
	Items           []domain.PAP
}

// GroupByContext buckets records by their classification triple,
// preserving item order within each bucket. Groups sort by key with the
// ungrouped bucket always last.
func GroupByContext(items []domain.PAP) []Group {
	byKey := make(map[string]*Group)
	order := make([]string, 0)

	for _, p := range items {
		key := p.GroupKey()
		g, ok := byKey[key]
		if !ok {
			g = &Group{
				Key:             key,
				DevelopmentArea: p.DevelopmentArea,
				Outcome:         p.Outcome,
				Strategy:        p.Strategy,
			}
			byKey[key] = g
			order = append(order, key)
		}
		g.Items = append(g.Items, p)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i] == domain.UngroupedKey {
			return false
		}
		if order[j] == domain.UngroupedKey {
			return true
		}
		return order[i] < order[j]
	})

	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}
