package service

import (
	"math"
	"sort"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/pkg/starknet"
)

// newLabelCollator orders display labels ignoring case. A collator is not
// safe for concurrent use, so callers build one per sort.
func newLabelCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// sortOptions orders filter options by label, ignoring case
func sortOptions(opts []model.Option) {
	c := newLabelCollator()
	sort.SliceStable(opts, func(i, j int) bool {
		return c.CompareString(opts[i].Label, opts[j].Label) < 0
	})
}

// guardLabels renders aggregated guard troops as "1,250 KnightT2"
func guardLabels(troops []model.GuardTroop) []string {
	if len(troops) == 0 {
		return nil
	}
	labels := make([]string, 0, len(troops))
	for _, t := range troops {
		labels = append(labels, humanize.Commaf(math.Round(t.Count*1000)/1000)+" "+t.Type)
	}
	return labels
}

// ownerLabel prefers a known username, then the short address, then "-"
func ownerLabel(usernames map[string]string, normalized string) string {
	if name := usernames[normalized]; name != "" {
		return name
	}
	if normalized != "" {
		return starknet.ShortAddress(normalized)
	}
	return "-"
}

// uniqueNormalized returns the distinct non-empty normalized addresses in
// first-seen order
func uniqueNormalized(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := starknet.NormalizeAddress(a)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
