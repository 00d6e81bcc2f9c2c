package uploader

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dhkang/blogpress/editor"
	"github.com/dhkang/blogpress/extract"
)

// Config is the top-level tool configuration.
type Config struct {
	// Workbook is an explicit .xlsx path. Empty = newest blog*.xlsx in
	// WorkDir.
	Workbook string `yaml:"workbook"`
	WorkDir  string `yaml:"work_dir"`

	// OutputDir holds the structured documents (post_NNN.docx); ImagesDir
	// the legacy section_N_*.png assets.
	OutputDir string `yaml:"output_dir"`
	ImagesDir string `yaml:"images_dir"`

	// LedgerDB is the SQLite run ledger path.
	LedgerDB string `yaml:"ledger_db"`

	// ManualLoginWait bounds the interactive pause offered when automated
	// login fails (captcha, device confirmation).
	ManualLoginWait time.Duration `yaml:"manual_login_wait"`

	// CredentialsEnv names the environment variables carrying the login
	// ID and password. Credentials never live in this file.
	CredentialsEnv struct {
		ID       string `yaml:"id"`
		Password string `yaml:"password"`
	} `yaml:"credentials_env"`

	Editor  editor.Config  `yaml:"editor"`
	Extract extract.Config `yaml:"extract"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("uploader: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("uploader: parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults. LoadConfigFile
// calls it; callers building a Config by hand should too.
func (c *Config) ApplyDefaults() {
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "images"
	}
	if c.LedgerDB == "" {
		c.LedgerDB = "blogpress.db"
	}
	if c.ManualLoginWait <= 0 {
		c.ManualLoginWait = 3 * time.Minute
	}
	if c.CredentialsEnv.ID == "" {
		c.CredentialsEnv.ID = "NAVER_ID"
	}
	if c.CredentialsEnv.Password == "" {
		c.CredentialsEnv.Password = "NAVER_PW"
	}
}

// credentials reads the login credentials from the configured environment
// variables.
func (c *Config) credentials() (editor.Credentials, error) {
	creds := editor.Credentials{
		ID:       os.Getenv(c.CredentialsEnv.ID),
		Password: os.Getenv(c.CredentialsEnv.Password),
	}
	if creds.ID == "" || creds.Password == "" {
		return creds, fmt.Errorf("uploader: %s or %s not set in environment",
			c.CredentialsEnv.ID, c.CredentialsEnv.Password)
	}
	return creds, nil
}
