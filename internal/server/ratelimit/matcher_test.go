package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/auth/login", Method: "POST", Limit: 10, Window: time.Minute},
		{Path: "/api/jobs", Method: "POST", Limit: 60, Window: time.Minute},
		{Path: "/api/jobs/", Method: "POST", Limit: 30, Window: time.Minute},
		{Path: "/api/jobs/", Method: "PUT", Limit: 60, Window: time.Minute},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantPath  string
		wantMatch bool
	}{
		{"exact match", "/api/auth/login", "POST", "/api/auth/login", true},
		{"exact beats prefix", "/api/jobs", "POST", "/api/jobs", true},
		{"prefix match", "/api/jobs/abc/candidates", "POST", "/api/jobs/", true},
		{"prefix match other method", "/api/jobs/abc", "PUT", "/api/jobs/", true},
		{"method mismatch", "/api/auth/login", "GET", "", false},
		{"no override", "/api/applications", "GET", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if !tt.wantMatch {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestMatchEndpointHealth(t *testing.T) {
	got := MatchEndpoint("/health", "GET", nil)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Limit)
}

func TestClass(t *testing.T) {
	withPattern := &EndpointConfig{Path: "/api/jobs/"}
	assert.Equal(t, "/api/jobs/", withPattern.Class("/api/jobs/abc/candidates"))

	fallback := &EndpointConfig{}
	assert.Equal(t, "/api/applications", fallback.Class("/api/applications"))
}
