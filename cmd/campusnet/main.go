package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hamed0406/campusnet/internal/config"
)

var (
	errExclusive    = errors.New("--login, --logout and --update are mutually exclusive")
	errDaemonUpdate = errors.New("--daemon cannot be combined with --update")
)

type options struct {
	login      bool
	logout     bool
	update     bool
	verbose    bool
	daemon     bool
	configPath string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("campusnet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.login, "login", false, "internet login")
	fs.BoolVar(&o.logout, "logout", false, "internet logout")
	fs.BoolVar(&o.update, "update", false, "update the stored username and password")
	fs.BoolVar(&o.verbose, "verbose", false, "print probe and portal details")
	fs.BoolVar(&o.daemon, "daemon", false, "repeat the action every daemon interval until interrupted")
	fs.StringVar(&o.configPath, "config", config.DefaultPath(), "path to settings file (YAML)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: campusnet [--login | --logout | --update] [--verbose] [--daemon] [--config path]")
		fmt.Fprintln(fs.Output(), "\nCampus network captive-portal login/logout.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	err := fs.Parse(args)
	return o, fs, err
}

func (o options) validate() error {
	n := 0
	for _, set := range []bool{o.login, o.logout, o.update} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errExclusive
	}
	if o.daemon && o.update {
		return errDaemonUpdate
	}
	return nil
}

func (o options) hasAction() bool {
	return o.login || o.logout || o.update
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}
	if err := opts.validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if !opts.hasAction() {
		fs.SetOutput(stdout)
		fs.Usage()
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, opts, stdin, stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "interrupted")
			return 1
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
