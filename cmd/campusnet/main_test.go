package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hamed0406/campusnet/internal/credential"
)

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name string
		opts options
		want error
	}{
		{"login", options{login: true}, nil},
		{"logout daemon", options{logout: true, daemon: true}, nil},
		{"login+logout", options{login: true, logout: true}, errExclusive},
		{"logout+update", options{logout: true, update: true}, errExclusive},
		{"daemon+update", options{update: true, daemon: true}, errDaemonUpdate},
	}
	for _, c := range cases {
		if err := c.opts.validate(); !errors.Is(err, c.want) {
			t.Fatalf("%s: want %v, got %v", c.name, c.want, err)
		}
	}
}

func TestParseFlags_DoubleDash(t *testing.T) {
	o, _, err := parseFlags([]string{"--logout", "--verbose", "--config", "/tmp/x.yaml"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !o.logout || !o.verbose || o.login || o.configPath != "/tmp/x.yaml" {
		t.Fatalf("unexpected options %+v", o)
	}
}

func TestRun_NoFlagsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	if code := run(nil, strings.NewReader(""), &out, io.Discard); code != 0 {
		t.Fatalf("want exit 0, got %d", code)
	}
	if !strings.Contains(out.String(), "--login") && !strings.Contains(out.String(), "-login") {
		t.Fatalf("usage not printed: %q", out.String())
	}
}

func TestRun_DaemonWithUpdateIsFatal(t *testing.T) {
	var errOut bytes.Buffer
	if code := run([]string{"--daemon", "--update"}, strings.NewReader(""), io.Discard, &errOut); code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "--daemon") {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func testEnv(t *testing.T) (settings, creds string) {
	t.Helper()
	dir := t.TempDir()
	creds = filepath.Join(dir, "credentials.yaml")
	t.Setenv("CAMPUSNET_CREDENTIALS", creds)
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))
	return filepath.Join(dir, "settings.yaml"), creds
}

func TestRun_UpdateWritesCredentials(t *testing.T) {
	settings, creds := testEnv(t)
	in := strings.NewReader("10205101\nhunter2\nhunter2\ny\n")
	var out bytes.Buffer

	if code := run([]string{"--update", "--config", settings}, in, &out, io.Discard); code != 0 {
		t.Fatalf("want exit 0, got %d (out=%q)", code, out.String())
	}
	f, ok, err := credential.NewStore(creds).Load()
	if err != nil || !ok {
		t.Fatalf("credentials not written: ok=%v err=%v", ok, err)
	}
	if f.User.Username != "10205101" || f.User.Password != "hunter2" {
		t.Fatalf("unexpected stored credentials %+v", f)
	}
	if !strings.Contains(out.String(), "Configuration updated.") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRun_MismatchIsFatalAndWritesNothing(t *testing.T) {
	settings, creds := testEnv(t)
	in := strings.NewReader("10205101\none\ntwo\n")
	var errOut bytes.Buffer

	if code := run([]string{"--update", "--config", settings}, in, io.Discard, &errOut); code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "don't match") {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
	if _, err := os.Stat(creds); !os.IsNotExist(err) {
		t.Fatalf("credentials should not exist, stat err=%v", err)
	}
}

func TestRun_InvalidConfigIsFatal(t *testing.T) {
	settings, _ := testEnv(t)
	if err := os.WriteFile(settings, []byte("pass_ratio: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var errOut bytes.Buffer
	if code := run([]string{"--login", "--config", settings}, strings.NewReader(""), io.Discard, &errOut); code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "pass_ratio") {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}
