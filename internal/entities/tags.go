package entities

import "strings"

const tagSeparator = ","

// NormalizeTags trims, collapses inner whitespace and lowercases every tag,
// dropping empties and duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.Join(strings.Fields(tag), " "))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma-joined tag column.
func SplitTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(joined, tagSeparator))
}

// JoinTags serializes tags for storage.
func JoinTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}
