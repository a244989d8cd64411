package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  tcp_port: 8081
  max_connections: 5000

redis:
  enabled: true
  addr: "redis:6379"
  password: "secret"
  db: 1

game:
  turn_timeout: 60
  ready_timeout: 15
  seat_wait: 5
  reconnect_timeout: 90
  fill_bots: true

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  ip_whitelist: ["10.0.0.1"]
  ip_blacklist:
    - "10.0.0.66"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8081, cfg.Server.TCPPort)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 60, cfg.Game.TurnTimeout)
	assert.Equal(t, 15, cfg.Game.ReadyTimeout)
	assert.Equal(t, 5, cfg.Game.SeatWait)
	assert.True(t, cfg.Game.FillBots)
	assert.Equal(t, 50, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Security.IPWhitelist)
	assert.Equal(t, []string{"10.0.0.66"}, cfg.Security.IPBlacklist)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"Missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") }},
		{"Broken YAML", func(t *testing.T) string { return writeConfig(t, "invalid: yaml: :::") }},
		{"Wrong type", func(t *testing.T) string { return writeConfig(t, "server:\n  port: high\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(tt.path(t))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultTCPPort, cfg.Server.TCPPort)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, defaultTurnTimeout, cfg.Game.TurnTimeout)
	assert.Equal(t, defaultReadyTimeout, cfg.Game.ReadyTimeout)
	assert.Equal(t, defaultReconnectTimeout, cfg.Game.ReconnectTimeout)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestDefault(t *testing.T) {
	// 不并行：Default 读取当前目录和环境变量

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultTurnTimeout, cfg.Game.TurnTimeout)
	assert.Equal(t, defaultSeatWait, cfg.Game.SeatWait)
}

func TestDurations(t *testing.T) {
	t.Parallel()

	game := &GameConfig{
		TurnTimeout:           30,
		ReadyTimeout:          20,
		SeatWait:              10,
		ReconnectTimeout:      120,
		ShutdownTimeout:       60,
		ShutdownCheckInterval: 5,
	}
	rate := &RateLimitConfig{BanDuration: 120}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"Turn", game.TurnTimeoutDuration(), 30 * time.Second},
		{"Ready", game.ReadyTimeoutDuration(), 20 * time.Second},
		{"Seat wait", game.SeatWaitDuration(), 10 * time.Second},
		{"Reconnect", game.ReconnectTimeoutDuration(), 2 * time.Minute},
		{"Shutdown in minutes", game.ShutdownTimeoutDuration(), time.Hour},
		{"Shutdown check", game.ShutdownCheckIntervalDuration(), 5 * time.Second},
		{"Ban", rate.BanDurationTime(), 2 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got, tt.name)
	}
}

func TestLoadFromEnv(t *testing.T) {
	// 不并行：修改环境变量

	t.Setenv("SERVER_HOST", "env-host")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("GAME_TURN_TIMEOUT", "120")
	t.Setenv("GAME_FILL_BOTS", "1")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.com, http://b.com")
	t.Setenv("SECURITY_IP_BLACKLIST", "1.2.3.4 ,5.6.7.8")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 120, cfg.Game.TurnTimeout)
	assert.True(t, cfg.Game.FillBots)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, []string{"1.2.3.4", "5.6.7.8"}, cfg.Security.IPBlacklist)
}
