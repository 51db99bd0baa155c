// Package store persists exchange rate snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/importcalc/internal/currency"
)

// RateStore keeps every fetched snapshot; the most recently inserted row wins.
type RateStore struct {
	db *sql.DB
}

// NewRateStore wraps an open database that has been migrated.
func NewRateStore(db *sql.DB) *RateStore {
	return &RateStore{db: db}
}

// SaveSnapshot implements currency.SnapshotStore.
func (s *RateStore) SaveSnapshot(ctx context.Context, snap currency.Snapshot) error {
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_snapshots (eur_to_aed, eur_to_usd, updated_at, source, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.EURToAED, snap.EURToUSD, snap.UpdatedAt, string(snap.Source), fetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert rate snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot implements currency.SnapshotStore.
func (s *RateStore) LatestSnapshot(ctx context.Context) (currency.Snapshot, bool, error) {
	var (
		snap      currency.Snapshot
		source    string
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT eur_to_aed, eur_to_usd, updated_at, source, fetched_at
		FROM rate_snapshots
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&snap.EURToAED, &snap.EURToUSD, &snap.UpdatedAt, &source, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return currency.Snapshot{}, false, nil
	}
	if err != nil {
		return currency.Snapshot{}, false, fmt.Errorf("query latest rate snapshot: %w", err)
	}

	snap.Source = currency.Source(source)
	if snap.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return currency.Snapshot{}, false, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	return snap, true, nil
}

// Count returns the number of stored snapshots.
func (s *RateStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rate_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rate snapshots: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep snapshots and returns how many were removed.
func (s *RateStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM rate_snapshots
		WHERE id NOT IN (SELECT id FROM rate_snapshots ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune rate snapshots: %w", err)
	}
	return res.RowsAffected()
}
