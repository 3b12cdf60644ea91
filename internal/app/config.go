package app

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/envutil"
	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/platform/neo4jdb"
)

// Settings are the operator-tunable values. Layers are merged in the order
// default < file < env < flags; a zero field never overrides.
type Settings struct {
	URI            string
	User           string
	Password       string
	Database       string
	TimeoutSeconds int
	MaxPoolSize    int
	Domain         string
	LogMode        string
}

// Config is everything one import run needs.
type Config struct {
	Settings Settings
	CSVPath  string
	Spec     domain.EdgeSpec
	DryRun   bool
}

func DefaultSettings() Settings {
	return Settings{
		URI:            neo4jdb.DefaultURI,
		User:           neo4jdb.DefaultUser,
		TimeoutSeconds: int(neo4jdb.DefaultTimeout / time.Second),
		MaxPoolSize:    neo4jdb.DefaultMaxPoolSize,
		LogMode:        "development",
	}
}

func SettingsFromEnv() Settings {
	return Settings{
		URI:            envutil.String("NEO4J_URI", ""),
		User:           envutil.String("NEO4J_USER", ""),
		Password:       envutil.String("NEO4J_PASSWORD", ""),
		Database:       envutil.String("NEO4J_DATABASE", ""),
		TimeoutSeconds: envutil.Int("NEO4J_TIMEOUT_SECONDS", 0),
		MaxPoolSize:    envutil.Int("NEO4J_MAX_POOL_SIZE", 0),
		Domain:         envutil.String("AD_DOMAIN", ""),
		LogMode:        envutil.String("LOG_MODE", ""),
	}
}

type fileSettings struct {
	Neo4j struct {
		URI            string `yaml:"uri"`
		Username       string `yaml:"username"`
		Password       string `yaml:"password"`
		Database       string `yaml:"database"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxPoolSize    int    `yaml:"max_pool_size"`
	} `yaml:"neo4j"`
	Domain  string `yaml:"domain"`
	LogMode string `yaml:"log_mode"`
}

// LoadSettingsFile reads a YAML settings file. Unknown keys are rejected.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, importerr.New(importerr.KindConfig, "load_settings", err)
	}
	defer f.Close()
	return decodeSettings(f)
}

func decodeSettings(r io.Reader) (Settings, error) {
	var fs fileSettings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, importerr.New(importerr.KindConfig, "decode_settings", err)
	}
	return Settings{
		URI:            strings.TrimSpace(fs.Neo4j.URI),
		User:           strings.TrimSpace(fs.Neo4j.Username),
		Password:       fs.Neo4j.Password,
		Database:       strings.TrimSpace(fs.Neo4j.Database),
		TimeoutSeconds: fs.Neo4j.TimeoutSeconds,
		MaxPoolSize:    fs.Neo4j.MaxPoolSize,
		Domain:         strings.TrimSpace(fs.Domain),
		LogMode:        strings.TrimSpace(fs.LogMode),
	}, nil
}

// Merge returns s with every non-zero field of over applied on top.
func (s Settings) Merge(over Settings) Settings {
	if over.URI != "" {
		s.URI = over.URI
	}
	if over.User != "" {
		s.User = over.User
	}
	if over.Password != "" {
		s.Password = over.Password
	}
	if over.Database != "" {
		s.Database = over.Database
	}
	if over.TimeoutSeconds > 0 {
		s.TimeoutSeconds = over.TimeoutSeconds
	}
	if over.MaxPoolSize > 0 {
		s.MaxPoolSize = over.MaxPoolSize
	}
	if over.Domain != "" {
		s.Domain = over.Domain
	}
	if over.LogMode != "" {
		s.LogMode = over.LogMode
	}
	return s
}

func (s Settings) Neo4j() neo4jdb.Config {
	return neo4jdb.Config{
		URI:         s.URI,
		User:        s.User,
		Password:    s.Password,
		Database:    s.Database,
		Timeout:     time.Duration(s.TimeoutSeconds) * time.Second,
		MaxPoolSize: s.MaxPoolSize,
	}
}
