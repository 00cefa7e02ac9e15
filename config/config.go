// ABOUTME: Seed run configuration from defaults, XDG config file, .env and environment
// ABOUTME: Later sources override earlier ones; command-line flags are applied by the caller
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Defaults for the demo deployment.
const (
	DefaultBaseURL        = "https://salesflow-api.onrender.com"
	DefaultAdminEmail     = "admin@salesflow.demo"
	DefaultAdminPassword  = "Admin123!"
	DefaultAdminFirstName = "Demo"
	DefaultAdminLastName  = "Admin"
	DefaultTenantName     = "SalesFlow Demo"
)

// Environment variables read by Load.
const (
	EnvBaseURL       = "SALESSEED_API_URL"
	EnvAdminEmail    = "SALESSEED_ADMIN_EMAIL"
	EnvAdminPassword = "SALESSEED_ADMIN_PASSWORD"
	EnvTenant        = "SALESSEED_TENANT"
	EnvTimeout       = "SALESSEED_TIMEOUT"
	EnvDBPath        = "SALESSEED_DB_PATH"
)

// Config is everything a seed run needs besides the dataset itself.
type Config struct {
	BaseURL        string   `json:"base_url"`
	AdminEmail     string   `json:"admin_email"`
	AdminPassword  string   `json:"admin_password"`
	AdminFirstName string   `json:"admin_first_name"`
	AdminLastName  string   `json:"admin_last_name"`
	TenantName     string   `json:"tenant_name"`
	RequestTimeout Duration `json:"request_timeout,omitempty"` // 0 = no timeout
	DataFile       string   `json:"data_file,omitempty"`       // empty = embedded demo data
	DBPath         string   `json:"db_path,omitempty"`         // empty = XDG data path
	Color          string   `json:"color,omitempty"`
}

// Duration is a time.Duration written as "30s" in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		AdminEmail:     DefaultAdminEmail,
		AdminPassword:  DefaultAdminPassword,
		AdminFirstName: DefaultAdminFirstName,
		AdminLastName:  DefaultAdminLastName,
		TenantName:     DefaultTenantName,
		Color:          "auto",
	}
}

// Path returns $XDG_CONFIG_HOME/salesseed/config.json.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "salesseed", "config.json")
}

// ErrCorrupt wraps a config file that could not be decoded. Load still
// returns usable defaults alongside it.
var ErrCorrupt = errors.New("corrupt config file")

// Load reads the XDG config file and envFile (".env" when empty; a missing
// default .env is fine) and applies environment overrides.
func Load(envFile string) (*Config, error) {
	return LoadFrom(Path(), envFile)
}

func LoadFrom(path, envFile string) (*Config, error) {
	cfg := Default()
	var warn error

	if data, err := os.ReadFile(path); err == nil {
		fileCfg := Default()
		if err := json.Unmarshal(data, fileCfg); err != nil {
			warn = fmt.Errorf("%w %s: %v", ErrCorrupt, path, err)
		} else {
			cfg = fileCfg
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookup(dotenv)); err != nil {
		return nil, err
	}

	return cfg, warn
}

func readDotenv(envFile string) (map[string]string, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	values, err := godotenv.Read(envFile)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	return values, nil
}

// lookup prefers the process environment over .env values.
func lookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := getenv(EnvAdminEmail); v != "" {
		cfg.AdminEmail = v
	}
	if v := getenv(EnvAdminPassword); v != "" {
		cfg.AdminPassword = v
	}
	if v := getenv(EnvTenant); v != "" {
		cfg.TenantName = v
	}
	if v := getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.RequestTimeout = Duration(d)
	}
	return nil
}

// Validate checks the fields a seed run cannot work without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	if c.AdminEmail == "" || c.AdminPassword == "" {
		return fmt.Errorf("admin email and password are required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	return nil
}

// Timeout returns RequestTimeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout)
}
