// Package config handles loading and validating the monitor configuration
// from JSON (or YAML) files with ${VAR} environment variable substitution.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "config.json"

// DefaultSound is the push-token channel sound used when none is configured.
const DefaultSound = "glass"

// EnvPrefix prefixes environment overrides, e.g. PICKUP_MONITOR_LOGGING_LEVEL.
const EnvPrefix = "PICKUP_MONITOR"

// ErrConfig wraps every error returned by Load.
var ErrConfig = errors.New("invalid configuration")

// Validation errors returned by TaskConfig.Validate.
var (
	ErrNoDevices    = errors.New("deviceCodeList must list at least one device, e.g. MQ0D3CH/A")
	ErrNoDeviceCode = errors.New("deviceCode is required for every device")
	ErrNoLocation   = errors.New("location is required, using the storefront's area format")
	ErrNoSchedule   = errors.New("cronExpressions is required, e.g. 0 0/1 * * * ?")
	ErrNoCountry    = errors.New("country is required, e.g. CN or JP")
)

// Config is the top-level application configuration. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	Task     TaskConfig     `mapstructure:"appleTaskConfig" yaml:"appleTaskConfig"`
	Upstream UpstreamConfig `mapstructure:"upstream" yaml:"upstream"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// TaskConfig describes what to watch and when.
type TaskConfig struct {
	Devices  []DeviceItem `mapstructure:"deviceCodeList" yaml:"deviceCodeList"`
	Location string       `mapstructure:"location" yaml:"location"`
	Schedule string       `mapstructure:"cronExpressions" yaml:"cronExpressions"`
	Country  string       `mapstructure:"country" yaml:"country"`
}

// DeviceItem is one product code to watch, with its store allow-list and
// notification targets.
type DeviceItem struct {
	Code string `mapstructure:"deviceCode" yaml:"deviceCode"`
	// StoreAllowList holds store name fragments. Empty means every store.
	StoreAllowList []string     `mapstructure:"storeWhiteList" yaml:"storeWhiteList"`
	PushTargets    []PushTarget `mapstructure:"pushConfigs" yaml:"pushConfigs"`
}

// PushTarget configures up to two independent channels. A target with
// neither channel fully populated is inert.
type PushTarget struct {
	BarkURL       string `mapstructure:"barkPushUrl" yaml:"barkPushUrl,omitempty"`
	BarkToken     string `mapstructure:"barkPushToken" yaml:"barkPushToken,omitempty"`
	BarkSound     string `mapstructure:"barkPushSound" yaml:"barkPushSound,omitempty"`
	FeishuWebhook string `mapstructure:"feishuBotWebhooks" yaml:"feishuBotWebhooks,omitempty"`
	FeishuSecret  string `mapstructure:"feishuBotSecret" yaml:"feishuBotSecret,omitempty"`
}

// BarkEnabled reports whether the push-token channel is configured.
func (p *PushTarget) BarkEnabled() bool {
	return p.BarkURL != "" && p.BarkToken != ""
}

// FeishuEnabled reports whether the signed webhook channel is configured.
func (p *PushTarget) FeishuEnabled() bool {
	return p.FeishuWebhook != "" && p.FeishuSecret != ""
}

// UpstreamConfig controls calls to the retailer API.
type UpstreamConfig struct {
	Timeout       time.Duration   `mapstructure:"timeout" yaml:"timeout"`
	StaggerOffset time.Duration   `mapstructure:"staggerOffset" yaml:"staggerOffset"`
	UserAgent     string          `mapstructure:"userAgent" yaml:"userAgent,omitempty"`
	BaseURL       string          `mapstructure:"baseURL" yaml:"baseURL,omitempty"` // overrides the storefront host
	RateLimit     RateLimitConfig `mapstructure:"rateLimit" yaml:"rateLimit"`
}

// RateLimitConfig bounds the request rate to the retailer API. A zero
// DailyLimit disables the daily cap.
type RateLimitConfig struct {
	PerSecond  float64 `mapstructure:"perSecond" yaml:"perSecond"`
	Burst      int     `mapstructure:"burst" yaml:"burst"`
	DailyLimit int64   `mapstructure:"dailyLimit" yaml:"dailyLimit"`
}

// ServerConfig defines the optional operations HTTP server.
type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" yaml:"writeTimeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// Load reads and parses a config file, performing environment variable
// substitution. Ambient sections get defaults; the task section is left
// as written until Validate is called.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("%w: reading config file: %w", ErrConfig, err)
	}

	// Expand environment variables so secrets can stay out of the file.
	expanded := expandEnv(string(data))

	v := viper.New()
	v.SetConfigType(configType(path))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("%w: parsing config: %w", ErrConfig, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %w", ErrConfig, err)
	}

	return cfg, nil
}

// envRef matches ${NAME} references. Bare $NAME is left alone so secrets
// and tokens may contain a literal '$'.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.staggerOffset", 1500*time.Millisecond)
	v.SetDefault("upstream.userAgent", "")
	v.SetDefault("upstream.baseURL", "")
	v.SetDefault("upstream.rateLimit.perSecond", 1.0)
	v.SetDefault("upstream.rateLimit.burst", 1)
	v.SetDefault("upstream.rateLimit.dailyLimit", 0)

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":9090")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks the fields the monitor cannot run without. On success it
// fills per-device defaults: a missing allow-list becomes empty (match
// every store) and a blank push sound becomes DefaultSound. It has no other
// side effects.
func (t *TaskConfig) Validate() error {
	if len(t.Devices) == 0 {
		return ErrNoDevices
	}
	if strings.TrimSpace(t.Location) == "" {
		return ErrNoLocation
	}
	if strings.TrimSpace(t.Schedule) == "" {
		return ErrNoSchedule
	}
	if strings.TrimSpace(t.Country) == "" {
		return ErrNoCountry
	}

	var errs []error
	for i := range t.Devices {
		if strings.TrimSpace(t.Devices[i].Code) == "" {
			errs = append(errs, fmt.Errorf("device %d: %w", i, ErrNoDeviceCode))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for i := range t.Devices {
		applyDeviceDefaults(&t.Devices[i])
	}

	return nil
}

func applyDeviceDefaults(d *DeviceItem) {
	if d.StoreAllowList == nil {
		d.StoreAllowList = []string{}
	}
	for i := range d.PushTargets {
		if d.PushTargets[i].BarkSound == "" {
			d.PushTargets[i].BarkSound = DefaultSound
		}
	}
}

// RecommendedSchedule returns a seconds-resolution cron expression that
// leaves three seconds per device between passes.
func RecommendedSchedule(devices int) string {
	return fmt.Sprintf("*/%d * * * * ?", max(devices, 1)*3)
}

// Redacted returns a deep copy of c with channel secrets masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Task.Devices = make([]DeviceItem, len(c.Task.Devices))
	for i, d := range c.Task.Devices {
		d.StoreAllowList = append([]string(nil), d.StoreAllowList...)
		targets := make([]PushTarget, len(d.PushTargets))
		for j, p := range d.PushTargets {
			p.BarkToken = mask(p.BarkToken)
			p.FeishuSecret = mask(p.FeishuSecret)
			targets[j] = p
		}
		d.PushTargets = targets
		out.Task.Devices[i] = d
	}
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}
