package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrConfigMissing marks a fatal configuration gap: the process exits
// before any query is issued.
var ErrConfigMissing = errors.New("configuration missing")

type Config struct {
	Jira     JiraConfig
	Sonar    SonarConfig
	CertPath string
	DataDir  string
	PlotDir  string
}

type JiraConfig struct {
	PAT       string
	SearchURL string
}

type SonarConfig struct {
	Token   string
	BaseURL string
}

// Load reads a .env file when present, then the environment. The result is
// built once at process start and passed into clients; nothing mutates it
// afterwards.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Jira: JiraConfig{
			PAT:       os.Getenv("PAT"),
			SearchURL: os.Getenv("JIRA_SEARCH_URL"),
		},
		Sonar: SonarConfig{
			Token:   os.Getenv("SONARQUBE_API_TOKEN"),
			BaseURL: os.Getenv("SONARQUBE_URL"),
		},
		CertPath: os.Getenv("WORKLENS_CERT"),
		DataDir:  getEnvOrDefault("WORKLENS_DATA_DIR", "data"),
		PlotDir:  getEnvOrDefault("WORKLENS_PLOT_DIR", "plots"),
	}

	return cfg, nil
}

func (c *Config) ValidateJira() error {
	if c.Jira.PAT == "" {
		return fmt.Errorf("%w: PAT not set", ErrConfigMissing)
	}
	if c.Jira.SearchURL == "" {
		return fmt.Errorf("%w: JIRA_SEARCH_URL not set", ErrConfigMissing)
	}
	return nil
}

func (c *Config) ValidateSonar() error {
	if c.Sonar.Token == "" {
		return fmt.Errorf("%w: SONARQUBE_API_TOKEN not set", ErrConfigMissing)
	}
	if c.Sonar.BaseURL == "" {
		return fmt.Errorf("%w: SONARQUBE_URL not set", ErrConfigMissing)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Tester is one tracked person from the roster. The trigram is the short
// identifier used in persisted artifact names.
type Tester struct {
	Name    string `koanf:"name"`
	Trigram string `koanf:"trigram"`
	Ext     bool   `koanf:"ext"`
}

// Email derives the query identity from the two-part display name and the
// external-contractor flag.
func (t Tester) Email(domain, extDomain string) (string, error) {
	parts := strings.Fields(t.Name)
	if len(parts) != 2 {
		return "", fmt.Errorf("tester name %q is not a two-part name", t.Name)
	}
	d := domain
	if t.Ext {
		d = extDomain
	}
	return strings.ToLower(parts[0]) + "." + strings.ToLower(parts[1]) + d, nil
}

// Roster is the immutable set of query subjects, loaded once from the
// roster file.
type Roster struct {
	Testers   []Tester `koanf:"testers"`
	Projects  []string `koanf:"projects"`
	Domain    string   `koanf:"domain"`
	ExtDomain string   `koanf:"ext_domain"`
}

// LoadRoster reads the roster file. A missing file is fatal for the caller.
func LoadRoster(path string) (*Roster, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("%w: roster file %s: %v", ErrConfigMissing, path, err)
	}

	var roster Roster
	if err := k.Unmarshal("", &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}

	if roster.ExtDomain == "" && roster.Domain != "" {
		roster.ExtDomain = "@ext." + strings.TrimPrefix(roster.Domain, "@")
	}

	return &roster, nil
}
