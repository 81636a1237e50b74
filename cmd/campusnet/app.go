package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/campusnet/internal/config"
	"github.com/hamed0406/campusnet/internal/credential"
	"github.com/hamed0406/campusnet/internal/domain"
	"github.com/hamed0406/campusnet/internal/httpapi"
	"github.com/hamed0406/campusnet/internal/logging"
	"github.com/hamed0406/campusnet/internal/notify"
	"github.com/hamed0406/campusnet/internal/portal"
	"github.com/hamed0406/campusnet/internal/probe"
	"github.com/hamed0406/campusnet/internal/repo"
	"github.com/hamed0406/campusnet/internal/repo/memory"
	"github.com/hamed0406/campusnet/internal/repo/postgres"
	"github.com/hamed0406/campusnet/internal/scheduler"
	"github.com/hamed0406/campusnet/internal/session"
)

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func execute(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) (err error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, opts.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	prompter := credential.NewTerminalPrompter(stdin, stdout)
	resolver := credential.NewResolver(logger, credential.NewStore(cfg.CredentialsPath), prompter, stdout)
	cred, err := resolver.Resolve(ctx, opts.update)
	if err != nil {
		return err
	}
	if opts.update {
		fmt.Fprintln(stdout, "Configuration updated.")
		return nil
	}

	action := domain.ActionLogin
	if opts.logout {
		action = domain.ActionLogout
	}

	ip, err := portal.LocalIP(cfg.DNSServer)
	if err != nil {
		return err
	}
	loginURL, err := cfg.LoginURL()
	if err != nil {
		return err
	}
	data := portal.NewPostData(cred.Username, cred.Password, cfg.ACID, ip)
	logger.Debug("session_setup",
		zap.String("login_url", loginURL),
		zap.String("user_ip", data.UserIP()),
		zap.String("username", data.Username()),
	)

	prober, err := probe.NewProber(logger, probe.NewHTTPChecker(cfg.ProbeTimeout()), cfg.ProbeURLs, cfg.PassRatio)
	if err != nil {
		return err
	}
	if opts.verbose {
		prober.Diagnoser = probe.NewDNSDiagnoser()
	}

	ctrl := session.New(logger, prober,
		portal.NewClient(loginURL, cfg.PortalTimeout()),
		data,
		stdout,
	)
	ctrl.MaxRounds = cfg.MaxRounds

	attempts, closeStore, err := openAttemptStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	if !opts.daemon {
		ctrl.Retry = func(ctx context.Context, _ domain.Action, _ int) bool {
			ok, perr := prompter.Confirm(ctx, "Continue? [y/N]")
			return perr == nil && ok
		}
		started := time.Now()
		res := ctrl.Run(ctx, action)
		a := res.Attempt(started, time.Now())
		if err := attempts.Append(context.WithoutCancel(ctx), &a); err != nil {
			logger.Warn("record_attempt_error", zap.Error(err))
		}
		return ctx.Err()
	}

	return runDaemon(ctx, cfg, logger, ctrl, action, attempts)
}

func runDaemon(ctx context.Context, cfg config.Config, logger *zap.Logger, ctrl *session.Controller, action domain.Action, attempts repo.AttemptStore) (err error) {
	var notifier notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifier = s
	}
	d := scheduler.NewDaemon(logger, ctrl, action, cfg.DaemonInterval(), attempts, notifier)
	d.Host, _ = os.Hostname()

	if cfg.StatusAddr != "" {
		srv := &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           httpapi.NewServer(logger, attempts).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.StatusAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api_listen_error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	d.Run(ctx)
	return nil
}

// openAttemptStore picks Postgres when a database is configured and the
// in-memory history otherwise.
func openAttemptStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.AttemptStore, func() error, error) {
	if cfg.DatabaseURL == "" {
		return memory.New(cfg.HistoryLimit), func() error { return nil }, nil
	}
	store, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open attempt history: %w", err)
	}
	return store, func() error { store.Close(); return nil }, nil
}
