// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance jobs: expiring translation
// requests stuck in processing and pruning old event log rows.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mocnha/mocnha-go/internal/store"
)

// eventRetentionDays is how long event log rows are kept.
const eventRetentionDays = 90

// Scheduler handles periodic maintenance tasks.
type Scheduler struct {
	db              *sql.DB
	cron            *cron.Cron
	logger          *slog.Logger
	staleRequestAge time.Duration
}

// New creates a new scheduler instance. staleRequestAge is the cutoff after
// which a translation request still in processing is considered abandoned.
func New(db *sql.DB, logger *slog.Logger, staleRequestAge time.Duration) *Scheduler {
	return &Scheduler{
		db:              db,
		cron:            cron.New(),
		logger:          logger,
		staleRequestAge: staleRequestAge,
	}
}

// Start registers the maintenance jobs and begins the scheduler.
func (s *Scheduler) Start() error {
	// Every 5 minutes
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		if err := s.expireStaleRequests(); err != nil {
			s.logger.Error("failed to expire stale translation requests", "error", err)
		}
	})
	if err != nil {
		return err
	}

	// Daily at 03:30
	_, err = s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune events", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// expireStaleRequests fails translation requests that have sat in processing
// longer than the configured cutoff.
func (s *Scheduler) expireStaleRequests() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := store.New(s.db).ExpireStaleProcessingRequests(ctx, s.staleRequestAge)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Warn("expired stale translation requests",
			"count", n,
			"max_age", s.staleRequestAge,
			"category", "translation",
		)
	}
	return nil
}

// pruneEvents removes event log rows past the retention window.
func (s *Scheduler) pruneEvents() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := store.New(s.db).PruneEvents(ctx, eventRetentionDays)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned old events", "count", n, "retention_days", eventRetentionDays)
	}
	return nil
}
