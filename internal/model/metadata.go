package model

import (
	"fmt"
	"sort"
	"strings"
)

// FormatMetadata encodes metadata as sorted key=value pairs joined by ';'.
func FormatMetadata(md map[string]string) string {
	if len(md) == 0 {
		return ""
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + md[k]
	}
	return strings.Join(pairs, ";")
}

// ParseMetadata decodes the FormatMetadata encoding. An empty string yields nil.
func ParseMetadata(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	md := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("parsing metadata %q: expected key=value", pair)
		}
		md[k] = v
	}
	return md, nil
}
