package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/andresuchdata/pharmacare/backend-go/internal/analytics"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultSweepWorkers = 4

// SweepResult summarises one run of the inventory alert sweep
type SweepResult struct {
	Pharmacists   int `json:"pharmacists"`
	Notifications int `json:"notifications"`
	Snapshots     int `json:"snapshots"`
	Failures      int `json:"failures"`
}

// AlertSweeper classifies every pharmacist's catalog once a day: it sends
// low-stock and expiring-soon notifications at most once per medicine per day
// and records the alert counts in the snapshot history.
type AlertSweeper struct {
	accounts  repository.AccountRepository
	medicines repository.MedicineRepository
	snapshots repository.AlertSnapshotRepository
	notifier  *NotificationService
	workers   int
	now       Clock
}

func NewAlertSweeper(
	accounts repository.AccountRepository,
	medicines repository.MedicineRepository,
	snapshots repository.AlertSnapshotRepository,
	notifier *NotificationService,
	workers int,
	now Clock,
) *AlertSweeper {
	if workers <= 0 {
		workers = defaultSweepWorkers
	}
	if now == nil {
		now = NewClock(nil)
	}
	return &AlertSweeper{
		accounts:  accounts,
		medicines: medicines,
		snapshots: snapshots,
		notifier:  notifier,
		workers:   workers,
		now:       now,
	}
}

// Run sweeps all pharmacists. A failing pharmacist is logged and counted; it
// does not stop the others.
func (s *AlertSweeper) Run(ctx context.Context) (SweepResult, error) {
	pharmacists, err := s.accounts.ListPharmacists(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list pharmacists: %w", err)
	}

	var notifications, snapshots, failures int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, p := range pharmacists {
		pharmacistID := p.ID
		g.Go(func() error {
			sent, err := s.SweepPharmacist(gctx, pharmacistID)
			atomic.AddInt64(&notifications, int64(sent))
			if err != nil {
				atomic.AddInt64(&failures, 1)
				log.Error().Err(err).Str("pharmacist", pharmacistID).Msg("alert sweep: pharmacist failed")
				return nil
			}
			atomic.AddInt64(&snapshots, 1)
			return nil
		})
	}
	_ = g.Wait()

	result := SweepResult{
		Pharmacists:   len(pharmacists),
		Notifications: int(notifications),
		Snapshots:     int(snapshots),
		Failures:      int(failures),
	}
	log.Info().
		Int("pharmacists", result.Pharmacists).
		Int("notifications", result.Notifications).
		Int("failures", result.Failures).
		Msg("alert sweep finished")

	return result, ctx.Err()
}

// SweepPharmacist returns the number of notifications sent for one pharmacist
func (s *AlertSweeper) SweepPharmacist(ctx context.Context, pharmacistID string) (int, error) {
	medicines, err := s.medicines.ListByPharmacist(ctx, pharmacistID)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	now := s.now()
	since := startOfDay(now)
	sent := 0

	send := func(kind domain.NotificationType, alert domain.MedicineAlert, title, message string) error {
		created, err := s.notifier.NotifyOnce(ctx, domain.Notification{
			RecipientID: pharmacistID,
			Type:        kind,
			Title:       title,
			Message:     message,
			MedicineID:  alert.ID,
		}, since)
		if err != nil {
			return fmt.Errorf("notify %s for %s: %w", kind, alert.ID, err)
		}
		if created {
			sent++
		}
		return nil
	}

	for _, alert := range analytics.LowStock(medicines, now) {
		message := fmt.Sprintf("%s (batch %s) has %d unit(s) left, reorder level %d", alert.Name, alert.BatchNumber, alert.Stock, alert.ReorderLevel)
		if alert.OutOfStock {
			message = fmt.Sprintf("%s (batch %s) is out of stock", alert.Name, alert.BatchNumber)
		}
		if err := send(domain.NotificationLowStock, alert, "Low stock", message); err != nil {
			return sent, err
		}
	}
	for _, alert := range analytics.ExpiringSoon(medicines, now) {
		days := 0
		if alert.DaysUntilExpiry != nil {
			days = *alert.DaysUntilExpiry
		}
		message := fmt.Sprintf("%s (batch %s) expires in %d day(s)", alert.Name, alert.BatchNumber, days)
		if err := send(domain.NotificationExpiringSoon, alert, "Expiring soon", message); err != nil {
			return sent, err
		}
	}

	if err := s.snapshots.Upsert(ctx, analytics.Snapshot(pharmacistID, medicines, now)); err != nil {
		return sent, fmt.Errorf("store snapshot: %w", err)
	}
	return sent, nil
}
