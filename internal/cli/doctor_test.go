package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
)

func TestCheckGoVersion(t *testing.T) {
	check := checkGoVersion()

	if check.Status != statusOK || check.Error != nil {
		t.Fatalf("unexpected go check %+v", check)
	}
	if !strings.Contains(check.Detail, runtime.Version()) {
		t.Errorf("expected Detail to contain %q, got %q", runtime.Version(), check.Detail)
	}
}

func TestCheckConfiguration(t *testing.T) {
	valid := config.DefaultRuntimeConfig()
	valid.Snapshots = []string{"a.json", "b.json"}

	tests := []struct {
		name       string
		mutate     func(*config.RuntimeConfig)
		wantStatus string
		wantDetail string
	}{
		{name: "valid", mutate: func(*config.RuntimeConfig) {}, wantStatus: statusOK, wantDetail: "2 snapshots, confidence=compat"},
		{name: "no snapshots is fine", mutate: func(c *config.RuntimeConfig) { c.Snapshots = nil }, wantStatus: statusOK, wantDetail: "0 snapshots"},
		{name: "bad workers", mutate: func(c *config.RuntimeConfig) { c.Workers = 100 }, wantStatus: statusFailed},
		{name: "unknown collector", mutate: func(c *config.RuntimeConfig) { c.Collectors = []string{"nope"} }, wantStatus: statusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			check := checkConfiguration(&cfg)
			if check.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s (%v)", tt.wantStatus, check.Status, check.Error)
			}
			if tt.wantStatus == statusFailed && check.Error == nil {
				t.Fatal("expected an error on failure")
			}
			if !strings.Contains(check.Detail, tt.wantDetail) {
				t.Fatalf("expected detail containing %q, got %q", tt.wantDetail, check.Detail)
			}
		})
	}
}

func TestCheckSnapshots(t *testing.T) {
	dir := t.TempDir()
	good := writeSnapshot(t, dir, "good.json", detector.Environment{UserAgent: uaAndroidChrome})
	empty := writeSnapshot(t, dir, "empty.json", detector.Environment{})

	checks := checkSnapshots([]string{good, empty, filepath.Join(dir, "missing.json")})
	if len(checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(checks))
	}
	if checks[0].Status != statusOK || checks[0].Detail != "Readable" {
		t.Errorf("unexpected good check %+v", checks[0])
	}
	if !strings.Contains(checks[1].Detail, "no user agent") {
		t.Errorf("expected user agent note, got %q", checks[1].Detail)
	}
	if checks[2].Status != statusFailed || checks[2].Error == nil {
		t.Errorf("expected missing snapshot to fail, got %+v", checks[2])
	}

	if got := checkSnapshots(nil); len(got) != 1 || got[0].Status != statusSkipped {
		t.Errorf("expected skipped check for no snapshots, got %+v", got)
	}

	many := make([]string, maxSnapshotChecks+2)
	for i := range many {
		many[i] = good
	}
	got := checkSnapshots(many)
	if len(got) != maxSnapshotChecks+1 || !strings.Contains(got[len(got)-1].Name, "2 more") {
		t.Errorf("expected truncation marker, got %+v", got[len(got)-1])
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	ctx := context.Background()

	if check := checkEndpoint(ctx, srv.URL, false); check.Status != statusOK || check.Detail != "HTTP 405" {
		t.Errorf("unexpected reachable check %+v", check)
	}
	if check := checkEndpoint(ctx, "", false); check.Status != statusSkipped {
		t.Errorf("expected skip without endpoint, got %+v", check)
	}
	if check := checkEndpoint(ctx, srv.URL, true); check.Status != statusSkipped {
		t.Errorf("expected skip in dry-run, got %+v", check)
	}
	if check := checkEndpoint(ctx, "http://[::1", false); check.Status != statusFailed || check.Detail != "Invalid URL" {
		t.Errorf("expected invalid URL, got %+v", check)
	}

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := closed.URL
	closed.Close()
	if check := checkEndpoint(ctx, url, false); check.Status != statusFailed || check.Detail != "Unreachable" {
		t.Errorf("expected unreachable, got %+v", check)
	}
}

func TestCheckOutputDirectory(t *testing.T) {
	if check := checkOutputDirectory(filepath.Join(t.TempDir(), "out")); check.Status != statusOK {
		t.Errorf("expected ok, got %+v", check)
	}
	if check := checkOutputDirectory(""); check.Status != statusFailed {
		t.Errorf("expected failure for empty dir, got %+v", check)
	}
}

func TestDoctorCommand(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir, "snap.json", detector.Environment{UserAgent: uaAndroidChrome})

	cmd := newDoctorCmd(newTestLoader(t))
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--snapshots", snap, "--output-dir", filepath.Join(dir, "out"), "--timeout", "5"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("doctor failed: %v\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"Running environment diagnostics", "Go Runtime", "Snapshot: " + snap, "All checks passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDoctorCommandFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("userAgent: [x"), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	cmd := newDoctorCmd(newTestLoader(t))
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--snapshots", bad, "--output-dir", filepath.Join(dir, "out")})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
		t.Fatalf("expected doctor failure, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Errorf("expected error details on stderr, got %q", stderr.String())
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"init": false, "detect": false, "report": false, "serve": false, "doctor": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestSubcommandsSilenceUsage(t *testing.T) {
	for _, c := range newRootCmd().Commands() {
		switch c.Name() {
		case "help", "completion":
			continue
		}
		if !c.SilenceUsage || !c.SilenceErrors {
			t.Errorf("subcommand %s should silence usage and errors so stdout stays NDJSON", c.Name())
		}
	}
}
