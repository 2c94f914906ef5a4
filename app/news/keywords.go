package news

import (
	"encoding/json"
	"strings"
)

// SplitKeywords splits a comma-separated list into trimmed, folded, non-empty terms.
func SplitKeywords(list string) []string {
	parts := strings.Split(list, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := Fold(strings.TrimSpace(part)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// ParseKeywordList accepts either a JSON array of strings or a comma-separated list.
// Anything that does not decode as a JSON array is treated as comma-separated.
func ParseKeywordList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			keywords := make([]string, 0, len(list))
			for _, item := range list {
				if kw := Fold(strings.TrimSpace(item)); kw != "" {
					keywords = append(keywords, kw)
				}
			}
			return keywords
		}
	}

	return SplitKeywords(raw)
}

// UniqueKeywords drops repeated terms while keeping first-seen order.
func UniqueKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	unique := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		unique = append(unique, kw)
	}
	return unique
}
