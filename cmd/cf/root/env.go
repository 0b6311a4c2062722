package root

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"chronoforge/internal/engine"
	"chronoforge/internal/journal"
	"chronoforge/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path := flagDB
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		p, err := storage.ResolveDBPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("ledger opened", zap.String("path", path))
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context, extra ...engine.Option) (*engine.Service, func(), error) {
	db, closeDB, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{
		engine.WithRules(cfg.Rules()),
		engine.WithLogger(logger),
		engine.WithImageBaseURI(cfg.BaseImageURI),
	}
	cleanup := closeDB
	if cfg.JournalDir != "" {
		w := journal.NewWriter(cfg.JournalDir)
		opts = append(opts, engine.WithSinks(w))
		cleanup = func() {
			if err := w.Close(); err != nil {
				logger.Warn("close journal", zap.Error(err))
			}
			closeDB()
		}
	}
	opts = append(opts, extra...)
	return engine.NewService(db, opts...), cleanup, nil
}

// callerAddress resolves --as, falling back to default_caller.
func callerAddress() (engine.Address, error) {
	raw := flagCaller
	if raw == "" {
		raw = cfg.DefaultCaller
	}
	if raw == "" {
		return "", errors.New("caller address is required: pass --as or set default_caller")
	}
	a, err := engine.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("--as: %w", err)
	}
	return a, nil
}

// paymentOrDefault parses an ether amount flag; empty means def.
func paymentOrDefault(raw string, def engine.Gwei) (engine.Gwei, error) {
	if raw == "" {
		return def, nil
	}
	return engine.ParseEther(raw)
}

func tokenArg(args []string, i int) (int64, error) {
	if i >= len(args) {
		return 0, errors.New("token id is required")
	}
	return engine.ParseTokenID(args[i])
}
