package gravatar

import (
	"testing"

	"ski-portal/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorURL(t *testing.T) {
	const hash = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"

	tests := []struct {
		name     string
		email    string
		gen      *Generator
		expected string
	}{
		{
			name:     "nil generator",
			email:    "test@example.com",
			gen:      nil,
			expected: "",
		},
		{
			name:     "disabled",
			email:    "test@example.com",
			gen:      New(utils.GravatarConfig{Enabled: false}),
			expected: "",
		},
		{
			name:     "empty email",
			email:    "  ",
			gen:      New(utils.GravatarConfig{Enabled: true}),
			expected: "",
		},
		{
			name:     "no options",
			email:    "test@example.com",
			gen:      New(utils.GravatarConfig{Enabled: true}),
			expected: "https://www.gravatar.com/avatar/" + hash,
		},
		{
			name:  "all options and case normalization",
			email: " TEST@EXAMPLE.COM ",
			gen: New(utils.GravatarConfig{
				Enabled:      true,
				DefaultImage: "identicon",
				Rating:       "pg",
				Size:         120,
			}),
			expected: "https://www.gravatar.com/avatar/" + hash + "?d=identicon&r=pg&s=120",
		},
		{
			name:  "invalid options are dropped",
			email: "test@example.com",
			gen: New(utils.GravatarConfig{
				Enabled:      true,
				DefaultImage: "bogus",
				Rating:       "nc17",
				Size:         5000,
			}),
			expected: "https://www.gravatar.com/avatar/" + hash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.gen.URL(tt.email))
		})
	}
}
