package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const scenarioInput = "dc1 host1 x usr-a 100\n" +
	"dc1 host1 x usr-b 300\n" +
	"dc1 host1 zones:used - 500\n" +
	"dc1 host1 zones:avail - 1500\n" +
	"dc1 host1 /var/crash - 10\n"

// isolate points the default config path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGEREPORT_CONFIG", filepath.Join(dir, "config.json"))
	return dir
}

func writeExe(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_NoResolve(t *testing.T) {
	isolate(t)

	code, out, errOut := runCLI(t, scenarioInput, "--no-resolve")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{
		"top 2 of 2 (0.4 GB total)",
		"      0.3  75.0   75.0  uuid:  usr-b\n",
		"      0.1  25.0  100.0  uuid:  usr-a\n",
		"dc1 host1      0      0   25.0%    0.0%       ? 2048.0% -1948.0%\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(errOut, "warning:") {
		t.Errorf("unexpected warnings:\n%s", errOut)
	}
}

func TestRun_MalformedLineWarns(t *testing.T) {
	isolate(t)

	code, out, errOut := runCLI(t, "dc1 host1 x usr-a\n"+scenarioInput, "-n")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, "warning: line 1:") {
		t.Errorf("stderr should warn about line 1:\n%s", errOut)
	}
	if !strings.Contains(out, "top 2 of 2") {
		t.Errorf("report should use the remaining lines:\n%s", out)
	}
}

func TestRun_ResolvesThroughConfiguredCommand(t *testing.T) {
	dir := isolate(t)
	calls := filepath.Join(dir, "calls.log")
	bin := writeExe(t, dir, "fake-lookup", `
echo "$1" >> "`+calls+`"
case "$1" in
  uuid=usr-b) echo "login: bob" ;;
  uuid=usr-a) echo "boom" >&2; exit 3 ;;
esac
`)
	cfgPath := filepath.Join(dir, "storagereport.yaml")
	cfg := "lookup:\n  command: [\"" + bin + "\", \"uuid={}\"]\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, scenarioInput, "--config", cfgPath)
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "login: bob") || !strings.Contains(out, "uuid:  usr-a") {
		t.Errorf("unexpected labels:\n%s", out)
	}
	if !strings.Contains(errOut, "warning:") || !strings.Contains(errOut, "boom") {
		t.Errorf("failed lookup should warn with stderr text:\n%s", errOut)
	}

	data, err := os.ReadFile(calls)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "uuid=usr-b\nuuid=usr-a\n" {
		t.Errorf("lookup calls = %q, want rank order", got)
	}
}

func TestRun_NoResolveMakesNoCalls(t *testing.T) {
	dir := isolate(t)
	calls := filepath.Join(dir, "calls.log")
	bin := writeExe(t, dir, "fake-lookup", `echo "$1" >> "`+calls+`"`)
	cfgPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{"lookup":{"command":["`+bin+`","{}"]}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if code, _, errOut := runCLI(t, scenarioInput, "-n"); code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if _, err := os.Stat(calls); !os.IsNotExist(err) {
		t.Errorf("lookup command ran with --no-resolve (stat err %v)", err)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"ok", []string{"-n"}, exitOK},
		{"positional arg", []string{"-n", "extra"}, exitUsage},
		{"unknown flag", []string{"--bogus"}, exitUsage},
		{"bad top", []string{"-n", "--top", "0"}, exitUsage},
		{"version arg", []string{"version", "extra"}, exitUsage},
		{"config show arg", []string{"config", "show", "x"}, exitUsage},
		{"config init arg", []string{"config", "init", "x"}, exitUsage},
		{"version bad flag", []string{"version", "--bogus"}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			code, _, errOut := runCLI(t, "", tt.args...)
			if code != tt.want {
				t.Errorf("exit = %d, want %d; stderr:\n%s", code, tt.want, errOut)
			}
		})
	}
}

func TestRun_InvalidConfigIsRuntimeError(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(cfgPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCLI(t, scenarioInput, "-c", cfgPath)
	if code != exitRuntime {
		t.Errorf("exit = %d, want %d", code, exitRuntime)
	}
	if !strings.Contains(errOut, "loading config") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRun_DefaultConfigPath(t *testing.T) {
	dir := isolate(t)
	cfg := `{"max_users": 1, "node": {"crash_unit_factor": 1}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, scenarioInput, "-n")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "top 1 of 2") {
		t.Errorf("max_users from the default config path not applied:\n%s", out)
	}
	if !strings.Contains(out, "    2.0%") {
		t.Errorf("crash_unit_factor from the default config path not applied:\n%s", out)
	}
}

func TestRun_TopLimitsUsers(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, scenarioInput, "-n", "--top", "1")
	if code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "top 1 of 2") || strings.Contains(out, "usr-a") {
		t.Errorf("expected only usr-b:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sub", "config.yaml")

	code, out, errOut := runCLI(t, "", "config", "init", "-c", path)
	if code != exitOK {
		t.Fatalf("init exit = %d: %s", code, errOut)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("init stdout = %q", out)
	}

	if code, _, _ := runCLI(t, "", "config", "init", "-c", path); code != exitRuntime {
		t.Errorf("second init exit = %d, want %d", code, exitRuntime)
	}

	code, out, errOut = runCLI(t, "", "config", "show", "-c", path)
	if code != exitOK {
		t.Fatalf("show exit = %d: %s", code, errOut)
	}
	if !strings.Contains(out, "max_users: 30") || !strings.Contains(out, "dataset_prefix: zones/") {
		t.Errorf("show output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	if code != exitOK || !strings.HasPrefix(out, "storagereport ") {
		t.Errorf("version: exit %d, out %q", code, out)
	}
}
