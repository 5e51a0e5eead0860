package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config := LoadConfig()
	require.NotNil(t, config)

	assert.True(t, config.Enabled)
	assert.Equal(t, 1000, config.DefaultLimit)
	assert.Equal(t, time.Minute, config.DefaultWindow)
	assert.NotEmpty(t, config.EndpointConfigs)
}

func TestLoadConfigDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	config := LoadConfig()
	assert.False(t, config.Enabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	config := LoadConfig()
	assert.Equal(t, 50, config.DefaultLimit)
	assert.Equal(t, 30*time.Second, config.DefaultWindow)
	assert.True(t, config.Whitelist["10.0.0.1"])
	assert.True(t, config.Whitelist["10.0.0.2"])
}

func TestParseIPList(t *testing.T) {
	assert.Empty(t, parseIPList(""))

	list := parseIPList("1.1.1.1, 2.2.2.2 ,,3.3.3.3")
	assert.Len(t, list, 3)
	assert.True(t, list["2.2.2.2"])
}
