package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/amaumene/gallery/pkg/errors"
)

const (
	DefaultLogLevel   = "INFO"
	DefaultEnvFile    = ".env"
	logLevelEnvVar    = "LOG_LEVEL"
	defaultBoltFile   = "gallery.db"
	defaultSqliteFile = "gallery.sqlite"
)

// levelNames are the accepted log level names after normalization.
var levelNames = map[string]struct{}{
	"CRITICAL": {},
	"FATAL":    {},
	"ERROR":    {},
	"WARNING":  {},
	"INFO":     {},
	"DEBUG":    {},
	"NOTSET":   {},
}

// Settings holds the validated process configuration
type Settings struct {
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	Backend     string        `env:"STORE_BACKEND" envDefault:"bolt" validate:"oneof=memory bolt sqlite mongo"`
	DataDir     string        `env:"DATA_DIR" envDefault:"." validate:"required"`
	DatabaseURL string        `env:"DATABASE_URL" validate:"omitempty,url"`
	Database    string        `env:"DATABASE_NAME" envDefault:"gallery" validate:"required"`
	Collection  string        `env:"COLLECTION_NAME" envDefault:"pieces" validate:"required"`
	MaxPieces   int           `env:"MAX_PIECES" envDefault:"20" validate:"min=1"`
	ScrapeDelay time.Duration `env:"SCRAPE_DELAY" envDefault:"1s" validate:"min=0"`
}

// ConfigError lists every configuration problem by variable name and rule.
// Raw values never appear in the message.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) Unwrap() error {
	return errors.ErrInvalidConfig
}

// Load reads envPath (when it exists) into the process environment and
// returns the validated settings. Variables already set in the process win
// over the file.
func Load(envPath string) (*Settings, error) {
	if envPath == "" {
		envPath = DefaultEnvFile
	}
	if err := godotenv.Load(envPath); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("env file %s: unreadable", envPath)}}
	}

	cfg := &Settings{}
	var problems []string
	unparsed := map[string]struct{}{}
	if err := env.Parse(cfg); err != nil {
		problems, unparsed = describeParseError(err)
	}

	// rule failures of a variable that did not parse only repeat the
	// parse problem
	for _, p := range cfg.problems() {
		name, _, _ := strings.Cut(p, ":")
		if _, ok := unparsed[name]; !ok {
			problems = append(problems, p)
		}
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}
	return cfg, nil
}

// Validate normalizes the log level and checks every field rule.
func (s *Settings) Validate() error {
	if problems := s.problems(); len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

func (s *Settings) problems() []string {
	var problems []string

	if strings.TrimSpace(s.LogLevel) == "" {
		s.LogLevel = DefaultLogLevel
	}
	level, err := NormalizeLogLevel(s.LogLevel)
	if err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", logLevelEnvVar, err))
	} else {
		s.LogLevel = level
	}

	if err := newValidator().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return append(problems, "settings could not be validated")
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q rule", fe.Field(), fe.Tag()))
		}
	}

	if s.Backend == "mongo" && s.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL: required for the mongo backend")
	}
	return problems
}

// NormalizeLogLevel upper-cases a level name and maps WARN to WARNING.
func NormalizeLogLevel(value string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if normalized == "WARN" {
		normalized = "WARNING"
	}
	if _, ok := levelNames[normalized]; !ok {
		allowed := make([]string, 0, len(levelNames))
		for name := range levelNames {
			allowed = append(allowed, name)
		}
		sort.Strings(allowed)
		return "", fmt.Errorf("log level must be one of: %s", strings.Join(allowed, ", "))
	}
	return normalized, nil
}

// BoltPath is the bolthold database file under DataDir.
func (s *Settings) BoltPath() string {
	return filepath.Join(s.DataDir, defaultBoltFile)
}

// SqlitePath is the SQLite database file under DataDir.
func (s *Settings) SqlitePath() string {
	return filepath.Join(s.DataDir, defaultSqliteFile)
}

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("env"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// describeParseError names each variable that failed to parse. The
// underlying parse errors quote raw values and are dropped. The second
// result holds the names reported.
func describeParseError(err error) ([]string, map[string]struct{}) {
	names := map[string]struct{}{}
	var agg env.AggregateError
	if !stderrors.As(err, &agg) {
		return []string{"environment could not be parsed"}, names
	}

	problems := make([]string, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		var perr env.ParseError
		if !stderrors.As(e, &perr) {
			problems = append(problems, e.Error())
			continue
		}
		name := envName(perr.Name)
		names[name] = struct{}{}
		problems = append(problems, fmt.Sprintf("%s: not a valid %s", name, perr.Type))
	}
	return problems, names
}

// envName returns the variable behind a Settings field.
func envName(field string) string {
	f, ok := reflect.TypeOf(Settings{}).FieldByName(field)
	if !ok {
		return field
	}
	if name, _, _ := strings.Cut(f.Tag.Get("env"), ","); name != "" {
		return name
	}
	return field
}
