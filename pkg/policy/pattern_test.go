package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches_Universal(t *testing.T) {
	for _, host := range []string{"example.com", "localhost", "127.0.0.1", "a.b.c.d.e"} {
		assert.True(t, Matches(host, "*"), "universal pattern should match %s", host)
	}
}

func TestMatches_SubdomainWildcard(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"api.example.com", "*.example.com", true},
		{"a.b.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"notexample.com", "*.example.com", false},
		{"example.com.evil.com", "*.example.com", false},
		{"sub.local", "*.local", true},
		{"local", "*.local", false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"/"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.host, tt.pattern))
		})
	}
}

func TestMatches_Exact(t *testing.T) {
	assert.True(t, Matches("localhost", "localhost"))
	assert.True(t, Matches("api.example.com", "api.example.com"))
	assert.False(t, Matches("api.example.com", "example.com"))
	assert.False(t, Matches("example.com", "api.example.com"))
}

func TestMatches_CaseInsensitive(t *testing.T) {
	assert.True(t, Matches("API.Example.COM", "api.example.com"))
	assert.True(t, Matches("api.example.com", "*.Example.Com"))
	assert.True(t, Matches("LOCALHOST", "localhost"))
}

func TestMatches_MalformedDegradesToLiteral(t *testing.T) {
	// Unsupported wildcard placements must never silently match everything.
	tests := []struct {
		host    string
		pattern string
	}{
		{"api.example.com", "api.*"},
		{"api.example.com", "api.*.com"},
		{"api.example.com", "*example.com"},
		{"api.example.com", "**.example.com"},
		{"anything", "a*b"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.False(t, Matches(tt.host, tt.pattern))
			// A literal host equal to the malformed pattern still matches.
			assert.True(t, Matches(tt.pattern, tt.pattern))
		})
	}
}
