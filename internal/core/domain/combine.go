package domain

// CombineKeepingLastDuplicate merges two ordered lists, keyed by
// keyFunc. When a key occurs in both lists the entry keeps the position
// it first appeared in but carries the content of the later occurrence,
// so a more specific layer can override an earlier one without
// reshuffling the list.
func CombineKeepingLastDuplicate(first, second []string, keyFunc func(string) string) []string {
	if keyFunc == nil {
		keyFunc = func(s string) string { return s }
	}

	override := make(map[string]string, len(second))
	for _, item := range second {
		override[keyFunc(item)] = item
	}

	combined := make([]string, 0, len(first)+len(second))
	seen := make(map[string]bool, len(first)+len(second))
	for _, item := range first {
		key := keyFunc(item)
		if replacement, ok := override[key]; ok {
			item = replacement
		}
		combined = append(combined, item)
		seen[key] = true
	}
	for _, item := range second {
		if !seen[keyFunc(item)] {
			combined = append(combined, item)
		}
	}
	return combined
}
