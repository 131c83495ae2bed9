// Package gravatar builds avatar URLs for reviewers.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"ski-portal/pkg/utils"
)

const baseURL = "https://www.gravatar.com/avatar/"

var validDefaults = map[string]bool{
	"404":       true,
	"mp":        true,
	"identicon": true,
	"monsterid": true,
	"wavatar":   true,
	"retro":     true,
	"robohash":  true,
	"blank":     true,
}

var validRatings = map[string]bool{
	"g":  true,
	"pg": true,
	"r":  true,
	"x":  true,
}

// Generator turns emails into avatar URLs. A nil or disabled Generator
// returns empty strings, which templates render as a placeholder.
type Generator struct {
	enabled bool
	query   string
}

// New validates cfg and drops options Gravatar would reject.
func New(cfg utils.GravatarConfig) *Generator {
	params := url.Values{}
	if validDefaults[cfg.DefaultImage] {
		params.Set("d", cfg.DefaultImage)
	}
	if validRatings[cfg.Rating] {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size >= 1 && cfg.Size <= 2048 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}

	return &Generator{
		enabled: cfg.Enabled,
		query:   params.Encode(),
	}
}

// URL returns the avatar URL for email, or "" when disabled or email is blank.
func (g *Generator) URL(email string) string {
	if g == nil || !g.enabled {
		return ""
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])
	if g.query != "" {
		u += "?" + g.query
	}
	return u
}
