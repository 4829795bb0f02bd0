package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-manguide/internal/config"
)

// Environment variable names.
const (
	envPrefix      = "MANGUIDE_"
	envConfigPath  = "MANGUIDE_CONFIG"
	envTitle       = "MANGUIDE_TITLE"
	envContainerID = "MANGUIDE_CONTAINER_ID"
	envCodeTag     = "MANGUIDE_CODE_TAG"
	envBasePath    = "MANGUIDE_BASE_PATH"
	envInputDir    = "MANGUIDE_INPUT_DIR"
	envOutputDir   = "MANGUIDE_OUTPUT_DIR"
	envTimeout     = "MANGUIDE_TIMEOUT"
	envWorkers     = "MANGUIDE_WORKERS"
	envLogLevel    = "MANGUIDE_LOG_LEVEL"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string
	Title       string
	ContainerID string
	CodeTag     string
	BasePath    string
	InputDir    string
	OutputDir   string
	Timeout     time.Duration
	Workers     int
}

// knownEnvVars lists valid MANGUIDE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfigPath:  true,
	envTitle:       true,
	envContainerID: true,
	envCodeTag:     true,
	envBasePath:    true,
	envInputDir:    true,
	envOutputDir:   true,
	envTimeout:     true,
	envWorkers:     true,
	envLogLevel:    true,
	envContainer:   true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable timeout and worker values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv(envConfigPath),
		Title:       os.Getenv(envTitle),
		ContainerID: os.Getenv(envContainerID),
		CodeTag:     os.Getenv(envCodeTag),
		BasePath:    os.Getenv(envBasePath),
		InputDir:    os.Getenv(envInputDir),
		OutputDir:   os.Getenv(envOutputDir),
	}

	if timeout := os.Getenv(envTimeout); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv(envWorkers); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes warnings for unrecognized MANGUIDE_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values to cfg.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Title != "" && cfg.Title == "" {
		cfg.Title = env.Title
	}
	if env.ContainerID != "" && cfg.Breadcrumb.ContainerID == "" {
		cfg.Breadcrumb.ContainerID = env.ContainerID
	}
	if env.CodeTag != "" && cfg.Highlight.Tag == "" {
		cfg.Highlight.Tag = env.CodeTag
	}
	if env.BasePath != "" && cfg.Site.BasePath == "" {
		cfg.Site.BasePath = env.BasePath
	}
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Timeout > 0 && cfg.Browser.Timeout == "" {
		cfg.Browser.Timeout = env.Timeout.String()
	}
}
