// Package handlers implements the business logic for CLI commands.
//
// Handlers load configuration, build the coordinator and relay-provider
// clients, run a reconcile recipe and render its outcome. Dependencies are
// created through package-level factory variables so tests can replace them.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/hsmv/internal/config"
	"github.com/imamik/hsmv/internal/logging"
	"github.com/imamik/hsmv/internal/metrics"
	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/reconcile"
	"github.com/imamik/hsmv/internal/ui"
	"github.com/imamik/hsmv/internal/util/async"
)

// Options are the flags shared by every command.
type Options struct {
	Debug   bool
	Workers int
	EnvFile string
	DryRun  bool
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newHeadscaleClient = func(cfg *config.Config) headscale.Client {
		return headscale.NewRealClient(cfg.HeadscaleURL, cfg.HeadscaleAPIKey, headscale.WithTimeouts(cfg.Timeouts))
	}

	newMullvadClient = func(cfg *config.Config) mullvad.Client {
		return mullvad.NewRealClient(cfg.MullvadAccount,
			mullvad.WithBaseURL(cfg.MullvadAPIURL),
			mullvad.WithTimeouts(cfg.Timeouts),
		)
	}

	newLogger = logging.Configure

	newTracker = func(log logr.Logger) async.Tracker {
		return ui.NewTracker(os.Stderr, log)
	}

	confirm = ui.Confirm("use --yes to skip")

	// stdout receives tables, listings and summaries.
	stdout io.Writer = os.Stdout
)

// session is the state of one command invocation.
type session struct {
	rc      *reconcile.Context
	log     logr.Logger
	cfg     *config.Config
	metrics *metrics.Recorder
}

// openSession loads and validates configuration and wires the reconcile
// context. The Mullvad account is only required when withMullvad is set.
func openSession(ctx context.Context, opts Options, withMullvad bool) (*session, error) {
	log := newLogger(opts.Debug)

	cfg, err := loadConfig(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	errs := []error{cfg.ValidateHeadscale()}
	if withMullvad {
		errs = append(errs, cfg.ValidateMullvad())
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var mv mullvad.Client
	if withMullvad {
		mv = newMullvadClient(cfg)
	}

	rec := metrics.NewRecorder()
	rc := reconcile.NewContext(ctx, newHeadscaleClient(cfg), mv, log)
	rc.Tracker = async.MultiTracker{newTracker(log), rec}
	rc.Workers = cfg.Workers()
	if opts.Workers > 0 {
		rc.Workers = opts.Workers
	}
	rc.DryRun = opts.DryRun

	log.V(logging.LevelDebug).Info("configuration loaded",
		"headscale", cfg.HeadscaleURL, "workers", rc.Workers, "dryRun", rc.DryRun)

	return &session{rc: rc, log: log, cfg: cfg, metrics: rec}, nil
}

// close pushes the batch metrics when a Pushgateway is configured. A failed
// push is logged and never fails the command.
func (s *session) close() {
	if s.cfg.PushgatewayURL == "" || s.rc.DryRun {
		return
	}

	ctx := context.WithoutCancel(s.rc)
	if s.cfg.Timeouts != nil && s.cfg.Timeouts.Shutdown > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeouts.Shutdown)
		defer cancel()
	}

	if err := s.metrics.Push(ctx, s.cfg.PushgatewayURL); err != nil {
		s.log.Info("metrics were not exported", "error", err.Error(), logging.WarnKey, true)
		return
	}
	s.log.V(logging.LevelDebug).Info("metrics pushed", "url", s.cfg.PushgatewayURL)
}

// finish prints the report and surfaces an interrupt that cut the run short.
func (s *session) finish(what string, r *reconcile.Report) error {
	printReport(what, r)
	return s.rc.Err()
}

// explain adds a hint to errors the user fixes in their configuration.
func explain(err error) error {
	if headscale.IsUnauthorized(err) {
		return fmt.Errorf("%w (check %s)", err, config.EnvHeadscaleAPIKey)
	}
	return err
}

// printReport writes the closing line of a mutating command.
func printReport(what string, r *reconcile.Report) {
	switch {
	case r.DryRun:
		fmt.Fprintln(stdout, ui.InfoMsg("Dry run: %d %s planned, nothing was changed", r.Planned, what))
	case r.Planned == 0:
		return
	case !r.OK():
		msg := fmt.Sprintf("%d %s succeeded, %d failed", r.Succeeded(), what, r.Failed())
		if n := r.NotStarted(); n > 0 {
			msg += fmt.Sprintf(", %d not started", n)
		}
		fmt.Fprintln(stdout, ui.WarnMsg("%s", msg))
	default:
		fmt.Fprintln(stdout, ui.SuccessMsg("%d %s done", r.Succeeded(), what))
	}
}
