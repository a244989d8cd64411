package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 1780
	defaultTCPPort          = 1781
	defaultMaxConnections   = 1000
	defaultRedisAddr        = "localhost:6379"
	defaultTurnTimeout      = 30
	defaultReadyTimeout     = 20
	defaultSeatWait         = 30
	defaultReconnectTimeout = 120
	defaultShutdownTimeout  = 10
	defaultShutdownInterval = 5
	defaultMaxPerSecond     = 10
	defaultMaxPerMinute     = 60
	defaultBanDuration      = 60
	defaultMessagePerSecond = 20
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig 监听配置：Port 为 WebSocket/HTTP 端口，TCPPort 为换行 JSON 的 TCP 端口
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	TCPPort        int    `yaml:"tcp_port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置，未启用时牌局快照和战绩不落盘
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 牌桌配置
type GameConfig struct {
	TurnTimeout           int  `yaml:"turn_timeout"`            // 决策超时（秒）
	ReadyTimeout          int  `yaml:"ready_timeout"`           // 局末确认超时（秒）
	SeatWait              int  `yaml:"seat_wait"`               // 开桌前等待真人入座（秒）
	ReconnectTimeout      int  `yaml:"reconnect_timeout"`       // 掉线后可凭令牌重连（秒）
	FillBots              bool `yaml:"fill_bots"`               // 等待结束后空座由机器人补齐
	ShutdownTimeout       int  `yaml:"shutdown_timeout"`        // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int  `yaml:"shutdown_check_interval"` // 优雅关闭检查间隔（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	IPWhitelist    []string           `yaml:"ip_whitelist"` // 非空时只放行这些 IP
	IPBlacklist    []string           `yaml:"ip_blacklist"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// MessageLimitConfig 已连接客户端的消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// TurnTimeoutDuration 返回决策超时时长
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// ReadyTimeoutDuration 返回局末确认超时时长
func (c *GameConfig) ReadyTimeoutDuration() time.Duration {
	return time.Duration(c.ReadyTimeout) * time.Second
}

// SeatWaitDuration 返回入座等待时长
func (c *GameConfig) SeatWaitDuration() time.Duration {
	return time.Duration(c.SeatWait) * time.Second
}

// ReconnectTimeoutDuration 返回重连时限
func (c *GameConfig) ReconnectTimeoutDuration() time.Duration {
	return time.Duration(c.ReconnectTimeout) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭最长等待
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回优雅关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// Load 加载配置文件，环境变量优先于文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default 返回默认配置，当前目录下存在 configs/config.yaml 时优先加载它
func Default() *Config {
	if cfg, err := Load("configs/config.yaml"); err == nil {
		return cfg
	}
	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Host, defaultHost)
	setDefault(&cfg.Server.Port, defaultPort)
	setDefault(&cfg.Server.TCPPort, defaultTCPPort)
	setDefault(&cfg.Server.MaxConnections, defaultMaxConnections)
	setDefault(&cfg.Redis.Addr, defaultRedisAddr)
	setDefault(&cfg.Game.TurnTimeout, defaultTurnTimeout)
	setDefault(&cfg.Game.ReadyTimeout, defaultReadyTimeout)
	setDefault(&cfg.Game.SeatWait, defaultSeatWait)
	setDefault(&cfg.Game.ReconnectTimeout, defaultReconnectTimeout)
	setDefault(&cfg.Game.ShutdownTimeout, defaultShutdownTimeout)
	setDefault(&cfg.Game.ShutdownCheckInterval, defaultShutdownInterval)
	setDefault(&cfg.Security.RateLimit.MaxPerSecond, defaultMaxPerSecond)
	setDefault(&cfg.Security.RateLimit.MaxPerMinute, defaultMaxPerMinute)
	setDefault(&cfg.Security.RateLimit.BanDuration, defaultBanDuration)
	setDefault(&cfg.Security.MessageLimit.MaxPerSecond, defaultMessagePerSecond)
	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func applyEnv(cfg *Config) {
	envString("SERVER_HOST", &cfg.Server.Host)
	envInt("SERVER_PORT", &cfg.Server.Port)
	envInt("SERVER_TCP_PORT", &cfg.Server.TCPPort)
	envBool("REDIS_ENABLED", &cfg.Redis.Enabled)
	envString("REDIS_ADDR", &cfg.Redis.Addr)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envInt("GAME_TURN_TIMEOUT", &cfg.Game.TurnTimeout)
	envBool("GAME_FILL_BOTS", &cfg.Game.FillBots)
	envList("SECURITY_ALLOWED_ORIGINS", &cfg.Security.AllowedOrigins)
	envList("SECURITY_IP_WHITELIST", &cfg.Security.IPWhitelist)
	envList("SECURITY_IP_BLACKLIST", &cfg.Security.IPBlacklist)
}

// envList 逗号分隔的列表
func envList(key string, field *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	items := strings.Split(v, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	*field = items
}

func envString(key string, field *string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

func envInt(key string, field *int) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*field = v
	}
}

func envBool(key string, field *bool) {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*field = v
	}
}
