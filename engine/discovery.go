// Package engine runs the native move-composer-engine plugin binary as a
// subprocess and drives it over a line-delimited JSON protocol. The Client
// implements movecompose.Composer.
package engine

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// BinaryName is the composition-engine plugin binary on PATH.
const BinaryName = "move-composer-engine"

// binEnvVar overrides discovery with an explicit binary path.
const binEnvVar = "MOVE_COMPOSER_ENGINE_BIN"

// pluginDir is the per-user plugin directory searched before PATH.
const pluginDir = ".movecompose/bin"

// Status describes whether the engine plugin is installed and where it was
// found.
type Status struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Installed   bool   `json:"installed"`
	BinaryPath  string `json:"binary_path,omitempty"`
	Source      string `json:"source,omitempty"`
}

// DoctorCheck is one diagnostic performed against the discovered binary.
type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// DoctorReport is the full plugin diagnostic: discovery status, checks, and
// an install hint when anything failed.
type DoctorReport struct {
	Plugin      Status        `json:"plugin"`
	Checks      []DoctorCheck `json:"checks"`
	InstallHint string        `json:"install_hint,omitempty"`
}

// AllOK reports whether every check passed.
func (r DoctorReport) AllOK() bool {
	for _, check := range r.Checks {
		if !check.OK {
			return false
		}
	}
	return true
}

// Discover locates the engine binary. Resolution order: the explicit path,
// the MOVE_COMPOSER_ENGINE_BIN environment variable, ~/.movecompose/bin,
// then PATH.
func Discover(explicitBin string) Status {
	path, source := resolveBinary(explicitBin)
	installed := false
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			installed = true
		}
	}
	return Status{
		Name:        BinaryName,
		Description: "Native batched-call composition engine plugin",
		Installed:   installed,
		BinaryPath:  path,
		Source:      source,
	}
}

// Doctor runs discovery plus executable and runnable checks against the
// engine binary.
func Doctor(explicitBin string) DoctorReport {
	plugin := Discover(explicitBin)
	checks := []DoctorCheck{{
		Name:    "binary_discovered",
		OK:      plugin.Installed,
		Message: discoveredMessage(plugin),
	}}

	if plugin.BinaryPath != "" {
		executable := isExecutable(plugin.BinaryPath)
		message := "binary exists but is not executable"
		if executable {
			message = "binary is executable"
		}
		checks = append(checks, DoctorCheck{Name: "binary_executable", OK: executable, Message: message})

		runnable := exec.Command(plugin.BinaryPath, "--help").Run() == nil
		message = "failed to run " + BinaryName + " --help"
		if runnable {
			message = BinaryName + " responds to --help"
		}
		checks = append(checks, DoctorCheck{Name: "binary_runnable", OK: runnable, Message: message})
	}

	report := DoctorReport{Plugin: plugin, Checks: checks}
	if !report.AllOK() {
		report.InstallHint = InstallHint()
	}
	return report
}

// InstallHint explains how to make the engine plugin available.
func InstallHint() string {
	return strings.Join([]string{
		"Install " + BinaryName + " and put it on PATH (or pass --engine-bin):",
		"  place the binary under ~/" + pluginDir + ",",
		"  export " + binEnvVar + "=/path/to/" + BinaryName + ",",
		"or pass --engine-bin /path/to/" + BinaryName,
	}, "\n")
}

func discoveredMessage(plugin Status) string {
	if plugin.Installed {
		return "found " + BinaryName + " at " + plugin.BinaryPath
	}
	return BinaryName + " binary not found"
}

func resolveBinary(explicitBin string) (path, source string) {
	if explicitBin != "" {
		return explicitBin, "flag"
	}
	if fromEnv := os.Getenv(binEnvVar); fromEnv != "" {
		return fromEnv, "env:" + binEnvVar
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, filepath.FromSlash(pluginDir), BinaryName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, "plugin-dir"
		}
	}
	if fromPath, err := exec.LookPath(BinaryName); err == nil {
		return fromPath, "path"
	}
	return "", ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
