package main

// Notes:
// - All tests use t.Setenv and cannot run in parallel.

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-manguide/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestLoadEnvConfig(t *testing.T) {
	clearManguideEnv(t)

	t.Setenv(envConfigPath, "team")
	t.Setenv(envTitle, "Ops Guide")
	t.Setenv(envContainerID, "trail")
	t.Setenv(envCodeTag, "samp")
	t.Setenv(envBasePath, "/docs/")
	t.Setenv(envInputDir, "build/html")
	t.Setenv(envOutputDir, "public")
	t.Setenv(envTimeout, "45s")
	t.Setenv(envWorkers, "4")

	want := &envConfig{
		ConfigPath:  "team",
		Title:       "Ops Guide",
		ContainerID: "trail",
		CodeTag:     "samp",
		BasePath:    "/docs/",
		InputDir:    "build/html",
		OutputDir:   "public",
		Timeout:     45 * time.Second,
		Workers:     4,
	}
	if diff := cmp.Diff(want, loadEnvConfig()); diff != "" {
		t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvConfig_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		workers string
	}{
		{"garbage", "soon", "many"},
		{"non-positive", "-5s", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearManguideEnv(t)
			t.Setenv(envTimeout, tt.timeout)
			t.Setenv(envWorkers, tt.workers)

			got := loadEnvConfig()
			if got.Timeout != 0 || got.Workers != 0 {
				t.Errorf("Timeout, Workers = %v, %d, want zero values", got.Timeout, got.Workers)
			}
		})
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	env := &envConfig{
		Title:       "Env Title",
		ContainerID: "env-crumbs",
		CodeTag:     "samp",
		BasePath:    "/env/",
		InputDir:    "env-in",
		OutputDir:   "env-out",
		Timeout:     time.Minute,
	}

	t.Run("fills empty fields", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		applyEnvConfig(env, cfg)

		want := &config.Config{
			Title:      "Env Title",
			Breadcrumb: config.BreadcrumbConfig{ContainerID: "env-crumbs"},
			Highlight:  config.HighlightConfig{Tag: "samp"},
			Site:       config.SiteConfig{BasePath: "/env/"},
			Input:      config.InputConfig{DefaultDir: "env-in"},
			Output:     config.OutputConfig{DefaultDir: "env-out"},
			Browser:    config.BrowserConfig{Timeout: "1m0s"},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("applyEnvConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps config values", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Title: "File Title", Browser: config.BrowserConfig{Timeout: "5s"}}
		applyEnvConfig(env, cfg)

		if cfg.Title != "File Title" {
			t.Errorf("Title = %q, want File Title", cfg.Title)
		}
		if cfg.Browser.Timeout != "5s" {
			t.Errorf("Browser.Timeout = %q, want 5s", cfg.Browser.Timeout)
		}
	})
}

func TestWarnUnknownEnvVars(t *testing.T) {
	clearManguideEnv(t)
	t.Setenv("MANGUIDE_TITEL", "typo")
	t.Setenv("OTHER_VAR", "ignored")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	got := buf.String()
	if !strings.Contains(got, "unknown environment variable MANGUIDE_TITEL") {
		t.Errorf("warning %q missing MANGUIDE_TITEL", got)
	}
	if strings.Contains(got, "MANGUIDE_TITLE ") || strings.Contains(got, "OTHER_VAR") {
		t.Errorf("unexpected warning %q", got)
	}
}
