package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const sampleVTT = "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello\n\n00:00:01.000 --> 00:00:02.500\nhello\nworld again\n"

type cliTestEnv struct {
	baseDir    string
	configPath string
	cacheDir   string
	inputDir   string
	outputDir  string
}

type testConfigOptions struct {
	ytDlp      string
	llmBaseURL string
}

func setupCLITestEnv(t *testing.T, opts testConfigOptions) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TLDW_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("TLDW_API_TOKEN", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		cacheDir:   filepath.Join(base, "cache"),
		inputDir:   filepath.Join(base, "inbox"),
		outputDir:  filepath.Join(base, "transcripts"),
	}
	if opts.ytDlp == "" {
		opts.ytDlp = writeYtDlpStub(t, base, "")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ncache_dir = %q\nlog_dir = %q\napi_bind = \"127.0.0.1:0\"\n\n", env.cacheDir, filepath.Join(base, "logs"))
	fmt.Fprintf(&b, "[ytdlp]\nbinary = %q\ncaption_retries = 1\n\n", opts.ytDlp)
	if opts.llmBaseURL != "" {
		fmt.Fprintf(&b, "[llm]\nprovider = \"openrouter\"\napi_key = \"test-key\"\nbase_url = %q\nmodel = \"test-model\"\n\n", opts.llmBaseURL)
	} else {
		b.WriteString("[llm]\nprovider = \"openrouter\"\napi_key = \"\"\n\n")
	}
	fmt.Fprintf(&b, "[watch]\ninput_dir = %q\noutput_dir = %q\n\n", env.inputDir, env.outputDir)
	b.WriteString("[logging]\nlevel = \"error\"\n")

	if err := os.WriteFile(env.configPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// writeYtDlpStub writes a shell script that answers --version and prints
// infoPath for any other invocation.
func writeYtDlpStub(t *testing.T, dir, infoPath string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 2025.10.22; exit 0; fi\n"
	if infoPath != "" {
		script += fmt.Sprintf("cat %q\n", infoPath)
	} else {
		script += "echo 'ERROR: no network in tests' >&2\nexit 1\n"
	}
	path := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write yt-dlp stub: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
