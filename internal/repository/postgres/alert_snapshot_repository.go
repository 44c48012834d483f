package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
)

const defaultHistoryDays = 30

type alertSnapshotRepository struct {
	db *DB
}

func NewAlertSnapshotRepository(db *DB) repository.AlertSnapshotRepository {
	return &alertSnapshotRepository{db: db}
}

// Upsert writes one row per pharmacist per day; a rerun on the same day overwrites it.
func (r *alertSnapshotRepository) Upsert(ctx context.Context, s domain.AlertSnapshot) error {
	query := `
		INSERT INTO inventory_alert_snapshots (
			pharmacist_id, snapshot_date, total_medicines, low_stock_count,
			out_of_stock_count, expiring_soon_count, expired_count, inventory_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pharmacist_id, snapshot_date) DO UPDATE SET
			total_medicines = EXCLUDED.total_medicines,
			low_stock_count = EXCLUDED.low_stock_count,
			out_of_stock_count = EXCLUDED.out_of_stock_count,
			expiring_soon_count = EXCLUDED.expiring_soon_count,
			expired_count = EXCLUDED.expired_count,
			inventory_value = EXCLUDED.inventory_value,
			updated_at = NOW()
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			s.PharmacistID,
			s.SnapshotDate.Format("2006-01-02"),
			s.TotalMedicines,
			s.LowStockCount,
			s.OutOfStockCount,
			s.ExpiringSoonCount,
			s.ExpiredCount,
			s.InventoryValue,
		)
		if err != nil {
			return fmt.Errorf("error upserting alert snapshot: %w", err)
		}
		return nil
	})
}

// History returns the pharmacist's snapshots of the last days days, oldest first
func (r *alertSnapshotRepository) History(ctx context.Context, pharmacistID string, days int) ([]domain.AlertSnapshot, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}

	query := `
		SELECT
			pharmacist_id,
			snapshot_date,
			total_medicines,
			low_stock_count,
			out_of_stock_count,
			expiring_soon_count,
			expired_count,
			inventory_value
		FROM inventory_alert_snapshots
		WHERE pharmacist_id = $1
			AND snapshot_date > (current_date - ($2 || ' days')::interval)
		ORDER BY snapshot_date ASC
	`

	snapshots := []domain.AlertSnapshot{}
	if err := r.db.SelectContext(ctx, &snapshots, query, pharmacistID, days); err != nil {
		return nil, fmt.Errorf("error getting alert snapshot history: %w", err)
	}

	return snapshots, nil
}

type noopAlertSnapshotRepository struct{}

// NewNoopAlertSnapshotRepository is used when Postgres is disabled
func NewNoopAlertSnapshotRepository() repository.AlertSnapshotRepository {
	return noopAlertSnapshotRepository{}
}

func (noopAlertSnapshotRepository) Upsert(context.Context, domain.AlertSnapshot) error {
	return nil
}

func (noopAlertSnapshotRepository) History(context.Context, string, int) ([]domain.AlertSnapshot, error) {
	return []domain.AlertSnapshot{}, nil
}
