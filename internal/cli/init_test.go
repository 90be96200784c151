package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
)

func TestInitCommandSuccessfulValidation(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "results")

	cmd := newInitCmd(newTestLoader(t))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--output-dir", outputDir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v\nOutput: %s", err, buf.String())
	}

	if !strings.Contains(buf.String(), "Environment looks good") {
		t.Fatalf("expected success message, got: %s", buf.String())
	}

	if _, err := os.Stat(outputDir); err != nil {
		t.Fatalf("output directory was not created: %v", err)
	}
}

func TestInitCommandWritesSample(t *testing.T) {
	dir := t.TempDir()
	samplePath := filepath.Join(dir, "samples", "android-webview.json")

	cmd := newInitCmd(newTestLoader(t))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--output-dir", filepath.Join(dir, "out"), "--write-sample", samplePath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	snap, err := detector.LoadSnapshot(samplePath)
	if err != nil {
		t.Fatalf("sample is not a loadable snapshot: %v", err)
	}

	result := detector.Detect(snap.Environment)
	if result.DetectionResult != detector.LabelWebView {
		t.Fatalf("sample should classify as webview, got %s", result.DetectionResult)
	}

	cmd = newInitCmd(newTestLoader(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--output-dir", filepath.Join(dir, "out"), "--write-sample", samplePath})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal to overwrite sample, got %v", err)
	}
}

func TestInitCommandWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir, "snap.json", detector.Environment{UserAgent: uaAndroidChrome})
	outputDir := filepath.Join(dir, "from-config")

	configPath := filepath.Join(dir, "wvdetect.config.yml")
	body := "snapshots:\n  - " + snap + "\nworkers: 8\noutputDir: " + outputDir + "\n"
	if err := os.WriteFile(configPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newInitCmd(&config.Loader{ConfigPath: configPath})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if !strings.Contains(buf.String(), outputDir) {
		t.Fatalf("expected config output dir in message, got %s", buf.String())
	}
}

func TestInitCommandErrors(t *testing.T) {
	dir := t.TempDir()
	invalidConfig := filepath.Join(dir, "invalid.yml")
	if err := os.WriteFile(invalidConfig, []byte("workers: [oops\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tests := []struct {
		name    string
		loader  *config.Loader
		args    []string
		wantErr string
	}{
		{name: "workers too high", args: []string{"--workers", "65"}, wantErr: "workers must be between"},
		{name: "workers too low", args: []string{"--workers", "0"}, wantErr: "workers must be between"},
		{name: "bad mode", args: []string{"--confidence-mode", "median"}, wantErr: "confidence mode"},
		{name: "bad collector", args: []string{"--collectors", "bogus"}, wantErr: "unknown collector"},
		{name: "missing snapshot", args: []string{"--snapshots", filepath.Join(dir, "absent.json")}, wantErr: "absent.json"},
		{name: "invalid config file", loader: &config.Loader{ConfigPath: invalidConfig}, wantErr: "load " + invalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := tt.loader
			if loader == nil {
				loader = newTestLoader(t)
			}
			cmd := newInitCmd(loader)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append(tt.args, "--output-dir", filepath.Join(t.TempDir(), "out")))

			err := cmd.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
