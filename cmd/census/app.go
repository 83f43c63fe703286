package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"go.opentelemetry.io/otel"

	"github.com/goliatone/go-census/pkg/census"
	"github.com/goliatone/go-census/pkg/config"
	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/draft/sqlite"
)

type globalOptions struct {
	configPath  string
	storeDriver string
	storePath   string
	verbosity   int
}

// app is the per-invocation wiring shared by the subcommands.
type app struct {
	cfg    config.Config
	logger logr.Logger
	drafts *draft.Manager
	closer io.Closer
}

func newApp(opts *globalOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.storeDriver != "" {
		cfg.Store.Driver = opts.storeDriver
	}
	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}

	stdr.SetVerbosity(opts.verbosity)
	logger := stdr.New(log.New(stderr, "census ", log.LstdFlags)).WithName("census")
	otel.SetLogger(logger.WithName("otel"))

	store, closer, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	drafts := draft.NewManager(store,
		draft.WithKey(cfg.DraftKey),
		draft.WithLogger(logger.WithName("draft")),
	)
	return &app{cfg: cfg, logger: logger, drafts: drafts, closer: closer}, nil
}

func (a *app) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func openStore(cfg config.Store) (draft.Store, io.Closer, error) {
	switch cfg.Driver {
	case "", "memory":
		return draft.NewMemoryStore(), nil, nil
	case "file":
		dir := cfg.Path
		if dir == "" {
			base, err := defaultDataDir()
			if err != nil {
				return nil, nil, err
			}
			dir = filepath.Join(base, "drafts")
		}
		store, err := draft.NewFileStore(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil, nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			base, err := defaultDataDir()
			if err != nil {
				return nil, nil, err
			}
			if err := os.MkdirAll(base, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create data dir: %w", err)
			}
			path = filepath.Join(base, "drafts.db")
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown draft store %q", cfg.Driver)
	}
}

func defaultDataDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "census"), nil
}

func (a *app) newForm() *census.Form {
	return census.New(
		census.WithConfig(a.cfg),
		census.WithLogger(a.logger.WithName("form")),
	)
}

// loadForm restores a form from the answers file at path, or from the saved
// draft when path is empty.
func (a *app) loadForm(ctx context.Context, path string) (*census.Form, error) {
	var (
		snapshot draft.Snapshot
		err      error
	)
	if path != "" {
		snapshot, err = readAnswers(path)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		snapshot, ok = a.drafts.Load(ctx)
		if !ok {
			return nil, errors.New("no saved draft; pass --answers or run census fill first")
		}
	}

	form := a.newForm()
	if err := form.Restore(snapshot); err != nil {
		return nil, fmt.Errorf("restore answers: %w", err)
	}
	return form, nil
}

func readAnswers(path string) (draft.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return draft.Snapshot{}, fmt.Errorf("read answers: %w", err)
	}
	return draft.Decode(raw)
}

func writeAnswers(path string, form *census.Form) error {
	raw, err := draft.Encode(form.Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write answers: %w", err)
	}
	return nil
}
