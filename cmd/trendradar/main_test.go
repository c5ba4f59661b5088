package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
schedule: "*/15 * * * *"
crawler:
  platforms:
    - id: zhihu
      name: Zhihu
      url: https://api.example/zhihu
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "*/15 * * * *", cfg.Schedule)
	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	t.Setenv("CRON_SCHEDULE", "0 9 * * *")
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * *", cfg.Schedule)
}

func TestLoadConfig_InvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	t.Setenv("CRON_SCHEDULE", "definitely not cron")
	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "2.0 KB", formatSize(2048))
	assert.Equal(t, "1.5 MB", formatSize(3<<19))
}
