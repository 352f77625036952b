// The KEYS command filters the key space against a glob pattern; this module
// implements the matching.

package port

import "v.io/v23/glob"

// matchGlob returns the keys matching the glob pattern, preserving order.
// An unparsable pattern matches nothing.
func matchGlob(pattern string, keys []string) []string {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		return nil
	}
	matched := make([]string, 0, len(keys))
	for _, key := range keys {
		if parsedPattern.Head().Match(key) {
			matched = append(matched, key)
		}
	}
	return matched
}
