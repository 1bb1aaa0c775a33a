package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/joho/godotenv"

	"markbook/internal/config"
	"markbook/internal/menu"
	"markbook/internal/registry"
	"markbook/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	st, cleanup, err := openStore(cfg)
	if err != nil {
		logger.Log("msg", "store init failed", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer cleanup()

	reg, err := registry.New(st, logger)
	if err != nil {
		logger.Log("msg", "registry init failed", "err", err)
		os.Exit(1)
	}

	m := menu.New(reg, os.Stdin, os.Stdout, cfg.ExportFile)
	if err := m.Run(); err != nil {
		logger.Log("msg", "menu loop failed", "err", err)
		os.Exit(1)
	}
}

// openStore picks the persistence backend from config. The JSON file is
// the default; sqlite is the embedded-database alternative.
func openStore(cfg config.App) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "json":
		s, err := store.NewJSONStore(cfg.DataFile)
		return s, func() {}, err
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
