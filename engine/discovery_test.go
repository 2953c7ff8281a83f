package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate clears every discovery source so each case controls exactly one.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(binEnvVar, "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())
}

func writeBinary(t *testing.T, dir string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, BinaryName)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), perm); err != nil {
		t.Fatalf("failed to write fake binary: %v", err)
	}
	return path
}

func TestDiscover(t *testing.T) {
	t.Run("explicit path wins over the environment", func(t *testing.T) {
		isolate(t)
		explicit := writeBinary(t, t.TempDir(), 0o755)
		t.Setenv(binEnvVar, "/elsewhere/"+BinaryName)

		status := Discover(explicit)
		if !status.Installed || status.BinaryPath != explicit || status.Source != "flag" {
			t.Errorf("Unexpected status: %+v", status)
		}
	})

	t.Run("environment variable is used when no flag is given", func(t *testing.T) {
		isolate(t)
		path := writeBinary(t, t.TempDir(), 0o755)
		t.Setenv(binEnvVar, path)

		status := Discover("")
		if !status.Installed || status.BinaryPath != path {
			t.Errorf("Unexpected status: %+v", status)
		}
		if status.Source != "env:"+binEnvVar {
			t.Errorf("Expected env source, got %q", status.Source)
		}
	})

	t.Run("plugin directory is searched before PATH", func(t *testing.T) {
		isolate(t)
		home := os.Getenv("HOME")
		dir := filepath.Join(home, filepath.FromSlash(pluginDir))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create plugin dir: %v", err)
		}
		path := writeBinary(t, dir, 0o755)

		status := Discover("")
		if !status.Installed || status.BinaryPath != path || status.Source != "plugin-dir" {
			t.Errorf("Unexpected status: %+v", status)
		}
	})

	t.Run("falls back to PATH", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()
		writeBinary(t, dir, 0o755)
		t.Setenv("PATH", dir)

		status := Discover("")
		if !status.Installed || status.Source != "path" {
			t.Errorf("Unexpected status: %+v", status)
		}
	})

	t.Run("reports not installed when nothing is found", func(t *testing.T) {
		isolate(t)

		status := Discover("")
		if status.Installed || status.BinaryPath != "" || status.Source != "" {
			t.Errorf("Unexpected status: %+v", status)
		}
		if status.Name != BinaryName {
			t.Errorf("Expected name %s, got %s", BinaryName, status.Name)
		}
	})
}

func TestDoctor(t *testing.T) {
	t.Run("all checks pass for a runnable binary", func(t *testing.T) {
		isolate(t)
		path := writeBinary(t, t.TempDir(), 0o755)

		report := Doctor(path)
		if !report.AllOK() {
			t.Errorf("Expected all checks to pass: %+v", report.Checks)
		}
		if len(report.Checks) != 3 {
			t.Errorf("Expected 3 checks, got %d", len(report.Checks))
		}
		if report.InstallHint != "" {
			t.Error("Expected no install hint on success")
		}
	})

	t.Run("flags a non-executable binary", func(t *testing.T) {
		isolate(t)
		path := writeBinary(t, t.TempDir(), 0o644)

		report := Doctor(path)
		if report.AllOK() {
			t.Error("Expected checks to fail")
		}

		var executableCheck *DoctorCheck
		for i := range report.Checks {
			if report.Checks[i].Name == "binary_executable" {
				executableCheck = &report.Checks[i]
			}
		}
		if executableCheck == nil || executableCheck.OK {
			t.Errorf("Expected binary_executable to fail: %+v", report.Checks)
		}
		if report.InstallHint == "" {
			t.Error("Expected an install hint on failure")
		}
	})

	t.Run("reports only discovery when nothing is found", func(t *testing.T) {
		isolate(t)

		report := Doctor("")
		if len(report.Checks) != 1 || report.Checks[0].Name != "binary_discovered" || report.Checks[0].OK {
			t.Errorf("Unexpected checks: %+v", report.Checks)
		}
		if !strings.Contains(report.InstallHint, BinaryName) {
			t.Errorf("Expected install hint to name the binary, got %q", report.InstallHint)
		}
	})
}
