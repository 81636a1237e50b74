// cmd/preflight/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hamed0406/campusnet/internal/config"
	"github.com/hamed0406/campusnet/internal/credential"
	"github.com/hamed0406/campusnet/internal/portal"
	"github.com/hamed0406/campusnet/internal/probe"
	"github.com/hamed0406/campusnet/internal/repo/postgres"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to settings file (YAML)")
	flag.Parse()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err.Error())
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		fail("settings invalid: " + err.Error())
	}
	loginURL, err := cfg.LoginURL()
	if err != nil {
		fail("login url: " + err.Error())
	}
	ok("portal " + loginURL)

	pass, failN := probe.Thresholds(len(cfg.ProbeURLs), cfg.PassRatio)
	ok(fmt.Sprintf("probe vote: %d targets, online after %d answers, offline after %d failures", len(cfg.ProbeURLs), pass, failN))
	if pass == 0 {
		warn("pass_ratio is so low that every probe reports online without a request")
	}

	f, exists, err := credential.NewStore(cfg.CredentialsPath).Load()
	switch {
	case err != nil:
		fail(err.Error())
	case !exists:
		warn("no credentials at " + cfg.CredentialsPath + "; the first run will prompt for them")
	case f.User.Username == "":
		warn("credentials file has no username")
	default:
		ok("credentials for " + f.User.Username)
		if f.User.Password == "" {
			warn("password not stored; every run will prompt for it")
		} else if st, err := os.Stat(cfg.CredentialsPath); err == nil && st.Mode().Perm()&0o077 != 0 {
			warn(fmt.Sprintf("credentials file is readable by others (%v); chmod 600 it", st.Mode().Perm()))
		}
	}

	ip, err := portal.LocalIP(cfg.DNSServer)
	if err != nil {
		warn("local ip: " + err.Error())
	} else {
		ok("local ip " + ip)
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := postgres.New(ctx, cfg.DatabaseURL, nil)
		cancel()
		if err != nil {
			warn("attempt history: " + err.Error())
		} else {
			store.Close()
			ok("attempt history in Postgres")
		}
	}

	prober, err := probe.NewProber(nil, probe.NewHTTPChecker(cfg.ProbeTimeout()), cfg.ProbeURLs, cfg.PassRatio)
	if err != nil {
		fail(err.Error())
	}
	v := prober.Check(context.Background())
	state := "offline"
	if v.Online {
		state = "online"
	}
	ok(fmt.Sprintf("internet is %s (%d checked, %d answered)", state, v.Checked, v.Passed))

	ok("preflight passed")
}
