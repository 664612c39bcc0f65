package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cookiejar "github.com/juju/persistent-cookiejar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/espr/internal/api"
	"github.com/roach88/espr/internal/catalog"
	"github.com/roach88/espr/internal/config"
	"github.com/roach88/espr/internal/logging"
	"github.com/roach88/espr/internal/orders"
	"github.com/roach88/espr/internal/store"
)

// app holds the collaborators a command needs, built from config and
// global flags.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	out       *OutputFormatter
	items     *store.Items
	client    *api.Client
	closeFunc func() error
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openApp loads config, builds the logger and API client, and opens the
// local store. Failures are reported through the formatter and returned as
// command errors.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	out := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, opts.Verbose)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout.Std(),
		Latency: cfg.SimulatedLatency.Std(),
		Logger:  logger,
	})
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	slots, closeFunc, err := openSlots(cfg.DBPath)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeStore, err.Error(), map[string]string{"path": cfg.DBPath})
	}
	out.VerboseLog("Using store %s and backend %s", cfg.DBPath, cfg.APIURL)
	if opts.Verbose {
		logSlots(cmd.Context(), out, slots)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		items:     store.NewItems(slots, logger),
		client:    client,
		closeFunc: closeFunc,
	}, nil
}

func openSlots(path string) (store.Slots, func() error, error) {
	if path == ":memory:" {
		return store.NewMemory(), func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

// slotLister is implemented by stores that can enumerate their slots.
type slotLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// logSlots lists the slots in use, most recently written first.
func logSlots(ctx context.Context, out *OutputFormatter, slots store.Slots) {
	lister, ok := slots.(slotLister)
	if !ok {
		return
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		out.VerboseLog("listing store slots: %v", err)
		return
	}
	if len(keys) == 0 {
		out.VerboseLog("Store slots: none")
		return
	}
	out.VerboseLog("Store slots: %s", strings.Join(keys, ", "))
}

// Close releases the store and flushes the logger.
func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.closeFunc()
}

// trackingFormat is the shape of tracking codes generated on this device.
func (a *app) trackingFormat() orders.TrackingFormat {
	return orders.TrackingFormat{Prefix: a.cfg.TrackingPrefix, Length: a.cfg.TrackingLength}
}

func (a *app) catalog() *catalog.Catalog {
	return catalog.New(a.client, a.logger)
}

// admin returns a console client whose session cookies persist in the
// configured cookie file.
func (a *app) admin() (*api.Admin, error) {
	if dir := filepath.Dir(a.cfg.CookieFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create cookie directory: %w", err)
		}
	}
	jar, err := cookiejar.New(&cookiejar.Options{Filename: a.cfg.CookieFile})
	if err != nil {
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}
	return api.NewAdmin(api.Options{
		BaseURL: a.cfg.APIURL,
		Timeout: a.cfg.RequestTimeout.Std(),
		Latency: a.cfg.SimulatedLatency.Std(),
		Logger:  a.logger,
	}, jar)
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *app) error) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.out.VerboseLog("closing store: %v", cerr)
		}
	}()
	return fn(cmd.Context(), a)
}

// isExitError reports whether err already carries an exit code.
func isExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
