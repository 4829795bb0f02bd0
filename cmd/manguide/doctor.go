package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/hints"
	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"
)

// envContainer forces container detection.
const envContainer = "MANGUIDE_CONTAINER"

// doctorStatus summarizes a doctor run.
type doctorStatus string

const (
	statusReady    doctorStatus = "ready"
	statusWarnings doctorStatus = "warnings"
	statusErrors   doctorStatus = "errors"
)

// doctorReport holds every diagnostic collected by the doctor command.
type doctorReport struct {
	Status   doctorStatus `json:"status"`
	Settings settingsInfo `json:"settings"`
	Browser  browserInfo  `json:"browser"`
	Env      envInfo      `json:"environment"`
	TempDir  tempDirInfo  `json:"temp_dir"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// settingsInfo is the effective configuration after flags, env and file.
type settingsInfo struct {
	Resolved    bool   `json:"resolved"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	ContainerID string `json:"container_id"`
	CodeTag     string `json:"code_tag"`
	Breadcrumb  bool   `json:"breadcrumb"`
	Highlight   bool   `json:"highlight"`
	Workers     int    `json:"workers"`
}

// browserInfo describes the Chrome binary capture would launch.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type tempDirInfo struct {
	Path     string `json:"path"`
	Writable bool   `json:"writable"`
}

// doctorFlags holds the flags of the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: manguide doctor [-c config] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the resolved settings, Chrome, container/CI sandboxing and temp directory access.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>   Config file name or path")
	fmt.Fprintln(w, "      --json            Print the report as JSON")
}

// runDoctorCmd executes the doctor command and returns an exit code.
// A missing browser only affects capture, so it is reported as a warning.
func runDoctorCmd(args []string, env *Environment) int {
	var f doctorFlags
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")

	if _, err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	report := runDoctor(f.config)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string) *doctorReport {
	report := &doctorReport{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkSettings(report, configName)
	checkBrowser(report)
	checkEnvironment(report)
	checkTempDir(report)

	switch {
	case len(report.Errors) > 0:
		report.Status = statusErrors
	case len(report.Warnings) > 0:
		report.Status = statusWarnings
	default:
		report.Status = statusReady
	}
	return report
}

// checkSettings resolves configuration the same way enhance and capture do.
func checkSettings(report *doctorReport, configName string) {
	s, err := resolveSettings(configName, &pageFlags{}, "", 0)
	if err != nil {
		report.Errors = append(report.Errors, "Settings: "+err.Error())
		return
	}

	source := "defaults"
	if configName == "" {
		configName = loadEnvConfig().ConfigPath
	}
	if configName != "" {
		source = configName
	}

	report.Settings = settingsInfo{
		Resolved:    true,
		Source:      source,
		Title:       valueOr(s.cfg.Title, manguide.DefaultTitle),
		ContainerID: s.containerID(),
		CodeTag:     valueOr(s.cfg.Highlight.Tag, manguide.DefaultCodeTag),
		Breadcrumb:  s.cfg.BreadcrumbEnabled(),
		Highlight:   s.cfg.HighlightEnabled(),
		Workers:     s.workers,
	}
}

// checkBrowser locates the browser used by capture.
func checkBrowser(report *doctorReport) {
	bin := report.Env.BrowserBin
	if bin == "" {
		var found bool
		bin, found = launcher.LookPath()
		if !found {
			report.Warnings = append(report.Warnings,
				"Chrome/Chromium not found; capture is unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(bin); err != nil {
		report.Errors = append(report.Errors,
			fmt.Sprintf("ROD_BROWSER_BIN points to a missing file: %s", bin))
		return
	}

	report.Browser = browserInfo{
		Found:   true,
		Path:    bin,
		Sandbox: report.Env.NoSandbox != "1",
	}

	// #nosec G204 -- path comes from ROD_BROWSER_BIN or launcher lookup
	out, err := exec.Command(bin, "--version").Output()
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Could not read browser version: %v", err))
		return
	}
	report.Browser.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments where Chrome
// needs its sandbox disabled.
func checkEnvironment(report *doctorReport) {
	report.Env.Container, report.Env.ContainerHint = isContainer()
	report.Env.CI = hints.InCI() || os.Getenv("CIRCLECI") != ""

	if (report.Env.Container || report.Env.CI) && report.Env.NoSandbox != "1" {
		report.Warnings = append(report.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns whether a container was detected and which signal
// gave it away.
func isContainer() (bool, string) {
	switch {
	case os.Getenv(envContainer) == "1":
		return true, envContainer + "=1"
	case hints.IsInContainer():
		return true, "/.dockerenv"
	case os.Getenv("container") != "": // podman, systemd-nspawn
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTempDir verifies that temporary files can be created. Atomic page
// writes and the browser profile both need it.
func checkTempDir(report *doctorReport) {
	report.TempDir.Path = os.TempDir()

	f, err := os.CreateTemp("", "manguide-doctor-*")
	if err != nil {
		report.Errors = append(report.Errors,
			fmt.Sprintf("Temp directory not writable: %s", report.TempDir.Path))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(filepath.Clean(name))
	report.TempDir.Writable = true
}

// printDoctorReport writes the human-readable report.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "manguide doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Settings")
	if s := r.Settings; s.Resolved {
		fmt.Fprintf(w, "  [OK] Source: %s\n", s.Source)
		fmt.Fprintf(w, "  [OK] Breadcrumb: %s (container #%s, root %q)\n", onOff(s.Breadcrumb), s.ContainerID, s.Title)
		fmt.Fprintf(w, "  [OK] Highlight: %s (<%s> blocks)\n", onOff(s.Highlight), s.CodeTag)
		fmt.Fprintf(w, "  [OK] Workers: %d\n", s.Workers)
	} else {
		fmt.Fprintln(w, "  [ERROR] Could not resolve settings")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser (capture only)")
	if b := r.Browser; b.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", b.Path)
		if b.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", b.Version)
		}
		if b.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.TempDir.Writable {
		fmt.Fprintf(w, "  [OK] Temp directory: %s\n", r.TempDir.Path)
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	printFindings(w, "Warnings:", "[WARN]", r.Warnings)
	printFindings(w, "Errors:", "[ERROR]", r.Errors)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printFindings(w io.Writer, header, tag string, findings []string) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(w, header)
	for _, f := range findings {
		fmt.Fprintf(w, "  %s %s\n", tag, f)
	}
	fmt.Fprintln(w)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
