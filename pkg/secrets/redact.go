package secrets

import "strings"

const mask = "***"

// Redact replaces every occurrence of the given secret values in s
// with a mask. Step output must pass through here before it reaches
// any log or run record.
func Redact(s string, values []string) string {
	if len(values) == 0 || s == "" {
		return s
	}

	pairs := make([]string, 0, 2*len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		pairs = append(pairs, v, mask)
	}
	if len(pairs) == 0 {
		return s
	}

	return strings.NewReplacer(pairs...).Replace(s)
}

// Values returns the values of a resolved secret map, for use with Redact.
func Values(resolved map[string]string) []string {
	values := make([]string, 0, len(resolved))
	for _, v := range resolved {
		values = append(values, v)
	}
	return values
}
