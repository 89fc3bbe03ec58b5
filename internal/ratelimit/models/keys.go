package models

import "strings"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so a caller-supplied identifier containing ':' cannot address another
// bucket. "user:admin" becomes "user_admin".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// UserKey is the bucket of an identified caller.
func UserKey(userID string) string {
	return "rl:user:" + SanitizeKeySegment(userID)
}

// IPKey is the bucket of an anonymous caller.
func IPKey(ip string) string {
	return "rl:ip:" + SanitizeKeySegment(ip)
}
