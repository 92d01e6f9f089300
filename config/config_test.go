package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	originalDir, _ := os.Getwd()
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(originalDir)

	o, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, 1000, o.IdleWaitMS)
	assert.False(t, o.MetricsEnabled)
	assert.Equal(t, ":9090", o.MetricsAddr)
	assert.Equal(t, 10*time.Second, o.MetricsInterval)
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := tmpDir + "/config.yaml"

	content := `
loglevel: warn
idlewaitms: 250
metrics:
  enabled: true
  addr: ":9999"
  interval: 5s
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	originalDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(originalDir)

	o, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", o.LogLevel)
	assert.Equal(t, 250, o.IdleWaitMS)
	assert.True(t, o.MetricsEnabled)
	assert.Equal(t, ":9999", o.MetricsAddr)
	assert.Equal(t, 5*time.Second, o.MetricsInterval)
}
