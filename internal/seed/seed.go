package seed

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Simplici0/importcalc/internal/currency"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureBaselineRates(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// ensureBaselineRates stores the static table when no snapshot exists yet, so the
// store can always answer LatestSnapshot.
func ensureBaselineRates(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM rate_snapshots LIMIT 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check rate snapshot existence: %w", err)
	}
	if exists {
		return nil
	}

	fb := currency.FallbackSnapshot()
	if _, err := tx.Exec(`
		INSERT INTO rate_snapshots (eur_to_aed, eur_to_usd, updated_at, source, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, fb.EURToAED, fb.EURToUSD, fb.UpdatedAt, string(fb.Source), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert baseline rate snapshot: %w", err)
	}
	stats.Inserts++
	return nil
}
