package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"PORT", "JWT_SECRET", "PATH_PREFIX", "SETTINGS_BACKEND", "PREVIEW_WIDTH_PX", "PREVIEW_MARGIN_PX", "STORE_NAME", "PDF_FONT_FILE", "DESIGNER_SESSION_IDLE", "DESIGNER_MAX_SESSIONS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3210", cfg.Port)
	assert.Equal(t, SettingsBackendDB, cfg.Settings.Backend)
	assert.Equal(t, "M MART", cfg.Store.Name)
	assert.Equal(t, 800.0, cfg.Preview.WidthPx)
	assert.Equal(t, 10.0, cfg.Preview.MarginPx)
	assert.Empty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.Render.PDFFontFile)
	assert.Equal(t, 30*time.Minute, cfg.Designer.SessionIdleTimeout)
	assert.Equal(t, 500, cfg.Designer.MaxSessions)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SETTINGS_BACKEND", "File")
	t.Setenv("PATH_PREFIX", "labels/")
	t.Setenv("PREVIEW_WIDTH_PX", "1024")
	t.Setenv("PDF_FONT_FILE", "/fonts/NotoSans.ttf")
	t.Setenv("DESIGNER_SESSION_IDLE", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SettingsBackendFile, cfg.Settings.Backend)
	assert.Equal(t, "/labels", cfg.PathPrefix)
	assert.Equal(t, 1024.0, cfg.Preview.WidthPx)
	assert.Equal(t, "/fonts/NotoSans.ttf", cfg.Render.PDFFontFile)
	assert.Equal(t, 5*time.Minute, cfg.Designer.SessionIdleTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SETTINGS_BACKEND", "redis")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SETTINGS_BACKEND", "memory")
	t.Setenv("PREVIEW_MARGIN_PX", "wide")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PREVIEW_MARGIN_PX", "")
	t.Setenv("DESIGNER_SESSION_IDLE", "soon")
	_, err = Load()
	assert.Error(t, err)
}

// chdir changes the working directory for the rest of the test and restores it afterwards.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
