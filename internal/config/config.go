package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const AppName = "campusnet"

type Config struct {
	GatewayURL        string   `yaml:"gateway_url"`             // portal endpoint without query
	ACID              string   `yaml:"ac_id"`                   // access-point id sent as ?ac_id= and in the form
	DNSServer         string   `yaml:"dns_server"`              // used to find the outbound interface address
	ProbeURLs         []string `yaml:"probe_urls"`              // connectivity vote targets
	PassRatio         float64  `yaml:"pass_ratio"`              // share of targets that must answer
	ProbeTimeoutMS    int      `yaml:"probe_timeout_ms"`        // per-request probe timeout
	PortalTimeoutMS   int      `yaml:"portal_timeout_ms"`       // portal POST timeout
	DaemonIntervalSec int      `yaml:"daemon_interval_seconds"` // pause between daemon passes
	MaxRounds         int      `yaml:"max_rounds"`              // 0 = unlimited (interactive retries only)
	CredentialsPath   string   `yaml:"credentials_path"`
	LogDir            string   `yaml:"log_dir"`
	DatabaseURL       string   `yaml:"database_url"` // empty means in-memory history
	StatusAddr        string   `yaml:"status_addr"`  // empty disables the status API
	SlackWebhook      string   `yaml:"slack_webhook"`
	HistoryLimit      int      `yaml:"history_limit"`
}

// Dir is the per-user configuration directory, e.g. ~/.config/campusnet.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName)
}

func DefaultPath() string {
	return filepath.Join(Dir(), "settings.yaml")
}

// Default returns the settings for the ECNU gateway.
func Default() Config {
	return Config{
		GatewayURL: "http://gateway.ecnu.edu.cn/srun_portal_pc.php",
		ACID:       "4",
		DNSServer:  "202.120.80.2",
		ProbeURLs: []string{
			"http://ipv4.mirrors.ustc.edu.cn/",
			"http://www.tsinghua.edu.cn",
			"http://www.baidu.com",
			"https://www.sina.com.cn/",
			"https://www.qq.com/",
		},
		PassRatio:         0.4,
		ProbeTimeoutMS:    3000,
		PortalTimeoutMS:   10000,
		DaemonIntervalSec: 120,
		MaxRounds:         0,
		CredentialsPath:   filepath.Join(Dir(), "credentials.yaml"),
		LogDir:            filepath.Join(Dir(), "logs"),
		HistoryLimit:      500,
	}
}

// Load reads a YAML settings file on top of the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unparsable numbers are
// ignored and the current value kept.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CAMPUSNET_GATEWAY_URL"); v != "" {
		c.GatewayURL = v
	}
	if v := os.Getenv("CAMPUSNET_AC_ID"); v != "" {
		c.ACID = v
	}
	if v := os.Getenv("CAMPUSNET_DNS_SERVER"); v != "" {
		c.DNSServer = v
	}
	if v := os.Getenv("CAMPUSNET_PROBE_URLS"); v != "" {
		c.ProbeURLs = splitList(v)
	}
	if v := os.Getenv("CAMPUSNET_PASS_RATIO"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			c.PassRatio = r
		}
	}
	if v := os.Getenv("CAMPUSNET_PROBE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.ProbeTimeoutMS = ms
		}
	}
	if v := os.Getenv("CAMPUSNET_DAEMON_INTERVAL_SEC"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			c.DaemonIntervalSec = s
		}
	}
	if v := os.Getenv("CAMPUSNET_MAX_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRounds = n
		}
	}
	if v := os.Getenv("CAMPUSNET_CREDENTIALS"); v != "" {
		c.CredentialsPath = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("STATUS_ADDR"); v != "" {
		c.StatusAddr = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.SlackWebhook = v
	}
}

func (c Config) Validate() error {
	if c.PassRatio <= 0 || c.PassRatio > 1 {
		return fmt.Errorf("pass_ratio must be in (0, 1], got %v", c.PassRatio)
	}
	if len(c.ProbeURLs) == 0 {
		return errors.New("probe_urls must list at least one url")
	}
	for _, raw := range c.ProbeURLs {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("probe url %q: %w", raw, err)
		}
	}
	if _, err := c.LoginURL(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ACID) == "" {
		return errors.New("ac_id is required")
	}
	if c.DNSServer == "" {
		return errors.New("dns_server is required")
	}
	if c.CredentialsPath == "" {
		return errors.New("credentials_path is required")
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must be >= 0, got %d", c.MaxRounds)
	}
	return nil
}

// LoginURL is the gateway URL with the ac_id query parameter set.
func (c Config) LoginURL() (string, error) {
	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("gateway_url %q is not an absolute url", c.GatewayURL)
	}
	q := u.Query()
	q.Set("ac_id", c.ACID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c Config) ProbeTimeout() time.Duration {
	if c.ProbeTimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

func (c Config) PortalTimeout() time.Duration {
	if c.PortalTimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.PortalTimeoutMS) * time.Millisecond
}

func (c Config) DaemonInterval() time.Duration {
	if c.DaemonIntervalSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.DaemonIntervalSec) * time.Second
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
