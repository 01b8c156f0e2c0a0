package detect

import "sort"

// Tally counts labels in one pass and orders them by descending count.
// Ties keep the order in which labels were first seen.
func Tally(labels []string) []LabelCount {
	if len(labels) == 0 {
		return nil
	}

	index := make(map[string]int, len(labels))
	counts := make([]LabelCount, 0)
	for _, label := range labels {
		if i, ok := index[label]; ok {
			counts[i].Count++
			continue
		}
		index[label] = len(counts)
		counts = append(counts, LabelCount{Label: label, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// DistinctLabels returns labels deduplicated in order of first appearance
func DistinctLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
