package ptv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testDevID = "3000123"
	testKey   = "9c132d31-6a30-4cac-8d8b-8a1970834799"
)

func TestSignPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "path without query",
			path:     "/v3/routes",
			expected: "/v3/routes?devid=3000123&signature=77a9bcb3ddcd97e98fd24ed638b8f768d198974f",
		},
		{
			name:     "path with existing query",
			path:     "/v3/departures/route_type/0/stop/1071?max_results=5",
			expected: "/v3/departures/route_type/0/stop/1071?max_results=5&devid=3000123&signature=2cdd30bcd11246cf6f01f1a7327dfa8143611ae8",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SignPath(tc.path, testDevID, testKey))
		})
	}
}

func TestSignPath_Deterministic(t *testing.T) {
	first := SignPath("/v3/routes", testDevID, testKey)
	second := SignPath("/v3/routes", testDevID, testKey)
	assert.Equal(t, first, second)
}

func TestSignPath_EveryInputChangesSignature(t *testing.T) {
	base := SignPath("/v3/routes", testDevID, testKey)

	assert.NotEqual(t, base, SignPath("/v3/routes/1", testDevID, testKey), "path")
	assert.NotEqual(t, base, SignPath("/v3/routes", "3000124", testKey), "dev id")
	assert.NotEqual(t, base, SignPath("/v3/routes", testDevID, testKey+"x"), "key")
}
