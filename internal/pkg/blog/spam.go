package blog

import "strings"

// spamKeywords is the fixed denylist scanned at comment submission. A match
// parks the comment as spam until a human reverses it; there is no rate
// limiting, duplicate detection or trust scoring on top of this.
var spamKeywords = []string{
	"viagra",
	"casino",
	"lottery",
}

// IsLikelySpam reports whether the content matches the keyword denylist,
// case-insensitively.
func IsLikelySpam(content string) bool {
	lowered := strings.ToLower(content)
	for _, keyword := range spamKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
