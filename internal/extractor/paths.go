package extractor

import (
	"strings"
)

// JoinPaths combines a controller base path with a method path. The result
// has exactly one leading slash, no repeated or trailing slashes, and is "/"
// when both parts are empty.
func JoinPaths(base, method string) string {
	joined := strings.TrimRight(base, "/")
	if trimmed := strings.Trim(method, "/"); trimmed != "" {
		joined += "/" + trimmed
	}

	var b strings.Builder
	b.Grow(len(joined) + 1)
	b.WriteByte('/')
	prev := byte('/')
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if c == '/' && prev == '/' {
			continue
		}
		b.WriteByte(c)
		prev = c
	}

	result := b.String()
	if len(result) > 1 {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// ContractName derives an identifier from the HTTP method and full path by
// dropping every character that is not an ASCII letter or digit
func ContractName(httpMethod, path string) string {
	var b strings.Builder
	for _, r := range httpMethod + " " + path {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
