package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "CHANNEL_MONITOR_CONFIG"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	channelURLsEnv   = "CHANNEL_URLS"
	emailAddressEnv  = "OUTLOOK_EMAIL"
	emailPasswordEnv = "OUTLOOK_PASSWORD"
	emailToEnv       = "EMAIL_TO"
	emailCcEnv       = "EMAIL_CC"
	smtpHostEnv      = "SMTP_HOST"
	smtpPortEnv      = "SMTP_PORT"
	checkIntervalEnv = "CHECK_INTERVAL"
	logLevelEnv      = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Channels  []string        `yaml:"channels"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Email     EmailConfig     `yaml:"email"`
	Storage   StorageConfig   `yaml:"storage"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines the polling cadence.
type SchedulerConfig struct {
	CheckIntervalSeconds int `yaml:"checkIntervalSeconds"`
	ChannelDelaySeconds  int `yaml:"channelDelaySeconds"`
}

// CheckInterval is the sleep between full polling cycles.
func (s SchedulerConfig) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalSeconds) * time.Second
}

// ChannelDelay is the courtesy pause between channels within a cycle.
func (s SchedulerConfig) ChannelDelay() time.Duration {
	return time.Duration(s.ChannelDelaySeconds) * time.Second
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint string  `yaml:"endpoint"`
	Model    string  `yaml:"model"`
	APIKey   string  `yaml:"apiKey"`
	Temp     float64 `yaml:"temperature"`
}

// EmailConfig wires SMTP delivery; incomplete credentials disable the
// notify stage rather than failing startup.
type EmailConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	To       string `yaml:"to"`
	Cc       string `yaml:"cc"`
	SMTPHost string `yaml:"smtpHost"`
	SMTPPort int    `yaml:"smtpPort"`
}

// StorageConfig points at the state file and insight output directory.
type StorageConfig struct {
	StateFile string `yaml:"stateFile"`
	OutputDir string `yaml:"outputDir"`
}

// Load reads .env, optional YAML configuration, and environment overrides.
// It fails only when the channel list is missing.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Channels) == 0 {
		return Config{}, fmt.Errorf("no channels configured: set %s=url1,url2,... in the environment or .env file", channelURLsEnv)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv(channelURLsEnv); v != "" {
		c.Channels = SplitChannelList(v)
	}
	if v := os.Getenv(emailAddressEnv); v != "" {
		c.Email.Address = v
	}
	if v := os.Getenv(emailPasswordEnv); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		c.Email.To = v
	}
	if v := os.Getenv(emailCcEnv); v != "" {
		c.Email.Cc = v
	}
	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Email.SMTPHost = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.SMTPPort = port
		}
	}
	if v := os.Getenv(checkIntervalEnv); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.Scheduler.CheckIntervalSeconds = seconds
		}
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// SplitChannelList parses a comma-separated channel list, trimming whitespace
// and dropping empty entries.
func SplitChannelList(raw string) []string {
	parts := strings.Split(raw, ",")
	channels := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			channels = append(channels, trimmed)
		}
	}
	return channels
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.CheckIntervalSeconds > 0 {
		base.Scheduler.CheckIntervalSeconds = override.Scheduler.CheckIntervalSeconds
	}
	if override.Scheduler.ChannelDelaySeconds > 0 {
		base.Scheduler.ChannelDelaySeconds = override.Scheduler.ChannelDelaySeconds
	}

	if len(override.Channels) > 0 {
		base.Channels = override.Channels
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Temp > 0 {
		base.Gemini.Temp = override.Gemini.Temp
	}

	if override.Email.Address != "" {
		base.Email.Address = override.Email.Address
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if override.Email.To != "" {
		base.Email.To = override.Email.To
	}
	if override.Email.Cc != "" {
		base.Email.Cc = override.Email.Cc
	}
	if override.Email.SMTPHost != "" {
		base.Email.SMTPHost = override.Email.SMTPHost
	}
	if override.Email.SMTPPort > 0 {
		base.Email.SMTPPort = override.Email.SMTPPort
	}

	if override.Storage.StateFile != "" {
		base.Storage.StateFile = override.Storage.StateFile
	}
	if override.Storage.OutputDir != "" {
		base.Storage.OutputDir = override.Storage.OutputDir
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			CheckIntervalSeconds: 3000,
			ChannelDelaySeconds:  2,
		},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-2.5-pro",
			Temp:     0.3,
		},
		Email: EmailConfig{
			SMTPHost: "smtp.office365.com",
			SMTPPort: 587,
		},
		Storage: StorageConfig{
			StateFile: "channel_state.json",
			OutputDir: "insights",
		},
	}
}
