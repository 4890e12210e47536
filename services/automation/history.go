// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package automation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

const runKeyPrefix = "run/"

// ErrRunNotFound is returned when a run ID has no history entry.
var ErrRunNotFound = errors.New("run not found")

// HistoryConfig holds configuration for the run history store.
type HistoryConfig struct {
	// Dir is the directory for the BadgerDB files.
	// Required unless InMemory is true.
	Dir string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultHistoryConfig returns production defaults for the given
// directory.
func DefaultHistoryConfig(dir string) HistoryConfig {
	return HistoryConfig{
		Dir:        dir,
		SyncWrites: true,
	}
}

// InMemoryHistoryConfig returns configuration optimized for testing.
func InMemoryHistoryConfig() HistoryConfig {
	return HistoryConfig{
		InMemory:   true,
		SyncWrites: false,
	}
}

// historyLogger adapts slog.Logger to BadgerDB's Logger interface.
type historyLogger struct {
	logger *slog.Logger
}

func (l *historyLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *historyLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *historyLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *historyLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// History is the BadgerDB-backed record of finished automation runs.
//
// Thread Safety: safe for concurrent use.
type History struct {
	db *badger.DB
}

// OpenHistory opens the run history store with the given configuration.
// Creates the directory if it doesn't exist. Caller must call Close().
func OpenHistory(cfg HistoryConfig) (*History, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("dir is required for persistent run history")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&historyLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	return &History{db: db}, nil
}

// SaveRun stores one terminal run result, replacing any previous entry
// with the same ID.
func (h *History) SaveRun(result *RunResult) error {
	if result == nil || result.ID == "" {
		return errors.New("run result must have an ID")
	}

	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", result.ID, err)
	}

	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+result.ID), blob)
	})
	if err != nil {
		return fmt.Errorf("store run %s: %w", result.ID, err)
	}
	return nil
}

// GetRun loads one run by ID. Returns ErrRunNotFound when absent.
func (h *History) GetRun(id string) (*RunResult, error) {
	var result RunResult

	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	return &result, nil
}

// ListRuns returns stored runs newest first. A positive limit caps the
// result; zero returns everything.
func (h *History) ListRuns(limit int) ([]*RunResult, error) {
	var runs []*RunResult

	err := h.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var run RunResult
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			})
			if err != nil {
				return err
			}
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
