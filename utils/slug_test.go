package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Learn Go":                 "learn-go",
		"  Learn   Go  ":           "learn-go",
		"Node.js: The Hard Parts!": "node-js-the-hard-parts",
		"100 Days of Code":         "100-days-of-code",
		"---":                      "",
		"":                         "",
		"Already-Slugged":          "already-slugged",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
