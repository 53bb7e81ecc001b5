package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalJSON = `{
  "appleTaskConfig": {
    "deviceCodeList": [
      {
        "deviceCode": "MQ0D3CH/A",
        "pushConfigs": [
          {"barkPushUrl": "https://api.day.app/push", "barkPushToken": "tok"}
        ]
      }
    ],
    "location": "Guangdong Shenzhen Nanshan",
    "cronExpressions": "*/3 * * * * ?",
    "country": "CN"
  }
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name:    "valid minimal config",
			file:    "config.json",
			content: minimalJSON,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				require.Len(t, cfg.Task.Devices, 1)
				assert.Equal(t, "MQ0D3CH/A", cfg.Task.Devices[0].Code)
				assert.Equal(t, "Guangdong Shenzhen Nanshan", cfg.Task.Location)
				assert.Equal(t, "*/3 * * * * ?", cfg.Task.Schedule)
				assert.Equal(t, "CN", cfg.Task.Country)
				require.Len(t, cfg.Task.Devices[0].PushTargets, 1)
				assert.True(t, cfg.Task.Devices[0].PushTargets[0].BarkEnabled())
				assert.False(t, cfg.Task.Devices[0].PushTargets[0].FeishuEnabled())
				assert.Nil(t, cfg.Task.Devices[0].StoreAllowList)
			},
		},
		{
			name:    "defaults applied for ambient sections",
			file:    "config.json",
			content: minimalJSON,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
				assert.Equal(t, 1500*time.Millisecond, cfg.Upstream.StaggerOffset)
				assert.InDelta(t, 1.0, cfg.Upstream.RateLimit.PerSecond, 0.0001)
				assert.Equal(t, 1, cfg.Upstream.RateLimit.Burst)
				assert.Zero(t, cfg.Upstream.RateLimit.DailyLimit)
				assert.False(t, cfg.Server.Enabled)
				assert.Equal(t, ":9090", cfg.Server.Addr)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			file: "config.json",
			content: `{
  "appleTaskConfig": {
    "deviceCodeList": [
      {
        "deviceCode": "MQ0D3CH/A",
        "pushConfigs": [
          {"feishuBotWebhooks": "https://open.feishu.cn/hook/x", "feishuBotSecret": "${TEST_FEISHU_SECRET}"}
        ]
      }
    ],
    "location": "Tokyo",
    "cronExpressions": "*/3 * * * * ?",
    "country": "JP"
  }
}`,
			envVars: map[string]string{"TEST_FEISHU_SECRET": "s3cret"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "s3cret", cfg.Task.Devices[0].PushTargets[0].FeishuSecret)
			},
		},
		{
			name:    "environment overrides ambient keys",
			file:    "config.json",
			content: minimalJSON,
			envVars: map[string]string{
				"PICKUP_MONITOR_LOGGING_LEVEL": "debug",
				"PICKUP_MONITOR_SERVER_ADDR":   ":8088",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, ":8088", cfg.Server.Addr)
			},
		},
		{
			name: "full config with overrides",
			file: "config.json",
			content: `{
  "appleTaskConfig": {
    "deviceCodeList": [
      {
        "deviceCode": "MQ0D3CH/A",
        "storeWhiteList": ["Holiday Plaza", "MixC"],
        "pushConfigs": [
          {
            "barkPushUrl": "https://api.day.app/push",
            "barkPushToken": "tok",
            "barkPushSound": "minuet",
            "feishuBotWebhooks": "https://open.feishu.cn/hook/x",
            "feishuBotSecret": "sec"
          }
        ]
      },
      {"deviceCode": "MQ0E3CH/A", "storeWhiteList": []}
    ],
    "location": "Shenzhen",
    "cronExpressions": "*/6 * * * * ?",
    "country": "CN-HK"
  },
  "upstream": {
    "timeout": "20s",
    "staggerOffset": "2s",
    "userAgent": "pickup-monitor/test",
    "baseURL": "http://localhost:8089",
    "rateLimit": {"perSecond": 0.5, "burst": 2, "dailyLimit": 5000}
  },
  "server": {"enabled": true, "addr": "127.0.0.1:9999"},
  "logging": {"level": "warn", "format": "json"}
}`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				require.Len(t, cfg.Task.Devices, 2)
				d := cfg.Task.Devices[0]
				assert.Equal(t, []string{"Holiday Plaza", "MixC"}, d.StoreAllowList)
				p := d.PushTargets[0]
				assert.Equal(t, "minuet", p.BarkSound)
				assert.True(t, p.BarkEnabled())
				assert.True(t, p.FeishuEnabled())
				assert.Empty(t, cfg.Task.Devices[1].StoreAllowList)
				assert.Equal(t, "CN-HK", cfg.Task.Country)
				assert.Equal(t, 20*time.Second, cfg.Upstream.Timeout)
				assert.Equal(t, 2*time.Second, cfg.Upstream.StaggerOffset)
				assert.Equal(t, "pickup-monitor/test", cfg.Upstream.UserAgent)
				assert.Equal(t, "http://localhost:8089", cfg.Upstream.BaseURL)
				assert.InDelta(t, 0.5, cfg.Upstream.RateLimit.PerSecond, 0.0001)
				assert.Equal(t, 2, cfg.Upstream.RateLimit.Burst)
				assert.Equal(t, int64(5000), cfg.Upstream.RateLimit.DailyLimit)
				assert.True(t, cfg.Server.Enabled)
				assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "yaml file by extension",
			file: "config.yaml",
			content: `
appleTaskConfig:
  deviceCodeList:
    - deviceCode: MQ0D3CH/A
  location: Singapore
  cronExpressions: "*/3 * * * * ?"
  country: SG
logging:
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "SG", cfg.Task.Country)
				assert.Equal(t, "MQ0D3CH/A", cfg.Task.Devices[0].Code)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "literal dollar signs survive expansion",
			file: "config.json",
			content: `{
  "appleTaskConfig": {
    "deviceCodeList": [
      {
        "deviceCode": "MQ0D3CH/A",
        "pushConfigs": [
          {
            "barkPushUrl": "https://api.day.app/push",
            "barkPushToken": "ab$cd",
            "feishuBotWebhooks": "https://open.feishu.cn/hook/${TEST_HOOK_ID}",
            "feishuBotSecret": "s3$${TEST_UNSET_VAR_X}"
          }
        ]
      }
    ],
    "location": "Tsim Sha Tsui $HOME",
    "cronExpressions": "*/3 * * * * ?",
    "country": "CN"
  }
}`,
			envVars: map[string]string{"TEST_HOOK_ID": "h1"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				p := cfg.Task.Devices[0].PushTargets[0]
				assert.Equal(t, "ab$cd", p.BarkToken)
				assert.Equal(t, "https://open.feishu.cn/hook/h1", p.FeishuWebhook)
				assert.Equal(t, "s3$", p.FeishuSecret)
				assert.Equal(t, "Tsim Sha Tsui $HOME", cfg.Task.Location)
			},
		},
		{
			name:    "malformed JSON",
			file:    "config.json",
			content: `{"appleTaskConfig": {`,
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := writeConfig(t, tt.file, tt.content)
			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfig)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "reading config file")
}

func validTask() TaskConfig {
	return TaskConfig{
		Devices: []DeviceItem{
			{
				Code: "MQ0D3CH/A",
				PushTargets: []PushTarget{
					{BarkURL: "https://api.day.app/push", BarkToken: "tok"},
					{FeishuWebhook: "https://open.feishu.cn/hook/x", FeishuSecret: "sec", BarkSound: "bell"},
				},
			},
			{Code: "MQ0E3CH/A", StoreAllowList: []string{"MixC"}},
		},
		Location: "Shenzhen",
		Schedule: "*/6 * * * * ?",
		Country:  "CN",
	}
}

func TestTaskConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(tc *TaskConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*TaskConfig) {}},
		{name: "no devices", mutate: func(tc *TaskConfig) { tc.Devices = nil }, wantErr: ErrNoDevices},
		{name: "blank location", mutate: func(tc *TaskConfig) { tc.Location = "  " }, wantErr: ErrNoLocation},
		{name: "blank schedule", mutate: func(tc *TaskConfig) { tc.Schedule = "" }, wantErr: ErrNoSchedule},
		{name: "blank country", mutate: func(tc *TaskConfig) { tc.Country = "" }, wantErr: ErrNoCountry},
		{
			name:    "blank device code",
			mutate:  func(tc *TaskConfig) { tc.Devices[1].Code = "" },
			wantErr: ErrNoDeviceCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tc := validTask()
			tt.mutate(&tc)

			err := tc.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTaskConfig_ValidateAppliesDefaults(t *testing.T) {
	t.Parallel()

	tc := validTask()
	require.NoError(t, tc.Validate())

	first := tc.Devices[0]
	require.NotNil(t, first.StoreAllowList)
	assert.Empty(t, first.StoreAllowList)
	assert.Equal(t, DefaultSound, first.PushTargets[0].BarkSound)
	assert.Equal(t, "bell", first.PushTargets[1].BarkSound)
	assert.Equal(t, []string{"MixC"}, tc.Devices[1].StoreAllowList)
}

func TestTaskConfig_ValidateFailureLeavesDefaultsUnset(t *testing.T) {
	t.Parallel()

	tc := validTask()
	tc.Country = ""
	require.Error(t, tc.Validate())
	assert.Nil(t, tc.Devices[0].StoreAllowList)
	assert.Empty(t, tc.Devices[0].PushTargets[0].BarkSound)
}

func TestPushTarget_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     PushTarget
		wantBark   bool
		wantFeishu bool
	}{
		{name: "inert", target: PushTarget{}},
		{name: "bark url only", target: PushTarget{BarkURL: "u"}},
		{name: "bark", target: PushTarget{BarkURL: "u", BarkToken: "t"}, wantBark: true},
		{name: "feishu secret only", target: PushTarget{FeishuSecret: "s"}},
		{name: "feishu", target: PushTarget{FeishuWebhook: "w", FeishuSecret: "s"}, wantFeishu: true},
		{
			name:       "both",
			target:     PushTarget{BarkURL: "u", BarkToken: "t", FeishuWebhook: "w", FeishuSecret: "s"},
			wantBark:   true,
			wantFeishu: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantBark, tt.target.BarkEnabled())
			assert.Equal(t, tt.wantFeishu, tt.target.FeishuEnabled())
		})
	}
}

func TestRecommendedSchedule(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "*/3 * * * * ?", RecommendedSchedule(1))
	assert.Equal(t, "*/12 * * * * ?", RecommendedSchedule(4))
	assert.Equal(t, "*/3 * * * * ?", RecommendedSchedule(0))
}

func TestConfig_Redacted(t *testing.T) {
	t.Parallel()

	cfg := &Config{Task: validTask()}
	cfg.Task.Devices[0].PushTargets[0].BarkToken = "abcdefgh"

	r := cfg.Redacted()
	assert.Equal(t, "ab****gh", r.Task.Devices[0].PushTargets[0].BarkToken)
	assert.Equal(t, "****", r.Task.Devices[0].PushTargets[1].FeishuSecret)

	// Original untouched.
	assert.Equal(t, "abcdefgh", cfg.Task.Devices[0].PushTargets[0].BarkToken)
	assert.Equal(t, "sec", cfg.Task.Devices[0].PushTargets[1].FeishuSecret)
}
