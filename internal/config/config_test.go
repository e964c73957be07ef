package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New[CoordinatorConfig]()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.HopTimeout)
	assert.Equal(t, "127.0.0.1:8000", cfg.Address())
	assert.NoError(t, cfg.Validate())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("APPSERVER_SATELLITE_NAME", "Earth")
	t.Setenv("APPSERVER_SATELLITE_PORT", "7001")
	t.Setenv("APPSERVER_HOP_TIMEOUT", "5s")
	t.Setenv("APPSERVER_TOOL_SOURCE", "redis")
	t.Setenv("APPSERVER_REDIS_ADDR", "cache:6380")
	t.Setenv("APPSERVER_TOOL_SIGNING_SECRET", "s3cret")

	cfg, err := New[SatelliteConfig]()
	require.NoError(t, err)

	assert.Equal(t, "Earth", cfg.Name)
	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.HopTimeout)
	assert.Equal(t, ToolSourceRedis, cfg.ToolSource)
	assert.Equal(t, "cache:6380", cfg.Addr)
	assert.Equal(t, "s3cret", cfg.Secret)
	assert.NoError(t, cfg.Validate())
}

func TestSatelliteConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SatelliteConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*SatelliteConfig) {}},
		{name: "missing name", mutate: func(c *SatelliteConfig) { c.Name = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *SatelliteConfig) { c.Port = 70000 }, wantErr: true},
		{name: "unknown source", mutate: func(c *SatelliteConfig) { c.ToolSource = "ftp" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &SatelliteConfig{Name: "Venus", Port: 0, ToolSource: ToolSourceStatic}
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestReadProperties(t *testing.T) {
	dir := t.TempDir()
	satellitePath := filepath.Join(dir, "Satellite.Earth.properties")
	require.NoError(t, os.WriteFile(satellitePath, []byte("NAME=Earth\nPORT=5001\n"), 0o600))
	serverPath := filepath.Join(dir, "Server.properties")
	require.NoError(t, os.WriteFile(serverPath, []byte("HOST=10.0.0.5\nPORT=5000\n"), 0o600))
	webPath := filepath.Join(dir, "WebServer.properties")
	require.NoError(t, os.WriteFile(webPath, []byte("HOST=code.local\nPORT=8081\n"), 0o600))

	satelliteProps, err := ReadProperties(satellitePath)
	require.NoError(t, err)
	assert.Equal(t, &Properties{Name: "Earth", Port: 5001}, satelliteProps)

	serverProps, err := ReadProperties(serverPath)
	require.NoError(t, err)
	webProps, err := ReadProperties(webPath)
	require.NoError(t, err)

	cfg := &SatelliteConfig{Host: "127.0.0.1", ToolSource: ToolSourceStatic}
	cfg.ApplySatelliteProperties(satelliteProps)
	cfg.ApplyServerProperties(serverProps)
	cfg.ApplyCodeServerProperties(webProps)

	assert.Equal(t, "Earth", cfg.Name)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, "10.0.0.5:5000", cfg.CoordinatorAddress())
	assert.Equal(t, "http://code.local:8081", cfg.CodeServerURL)
	assert.Equal(t, ToolSourceHTTP, cfg.ToolSource)
}

func TestReadProperties_MissingFile(t *testing.T) {
	_, err := ReadProperties(filepath.Join(t.TempDir(), "absent.properties"))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.env"), []byte("APPSERVER_ADMIN_PORT=9999\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { _ = os.Unsetenv("APPSERVER_ADMIN_PORT") })

	require.NoError(t, LoadEnv("test"))
	cfg, err := New[CoordinatorConfig]()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.AdminPort)

	assert.Error(t, LoadEnv("missing"))
	assert.NoError(t, LoadEnv(""))
}
