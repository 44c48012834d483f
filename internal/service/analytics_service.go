package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/pharmacare/backend-go/internal/analytics"
	"github.com/andresuchdata/pharmacare/backend-go/internal/cache"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	orders    repository.OrderRepository
	medicines repository.MedicineRepository
	cache     cache.ReportCache
	now       Clock
}

func NewAnalyticsService(orders repository.OrderRepository, medicines repository.MedicineRepository, reportCache cache.ReportCache, now Clock) *AnalyticsService {
	if reportCache == nil {
		reportCache = cache.NewNoopReportCache()
	}
	if now == nil {
		now = NewClock(nil)
	}
	return &AnalyticsService{orders: orders, medicines: medicines, cache: reportCache, now: now}
}

// PharmacistReport builds the dashboard for one pharmacist. Orders are
// required; when the catalog cannot be read the report is still produced
// with empty inventory figures, but it is not cached.
func (s *AnalyticsService) PharmacistReport(ctx context.Context, pharmacistID string) (*domain.AnalyticsReport, error) {
	if report, ok, err := s.cache.GetReport(ctx, pharmacistID); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get report failed")
	}

	var (
		orders    []domain.Order
		medicines []domain.Medicine
		degraded  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListByPharmacist(gctx, pharmacistID, "")
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		medicines, err = s.medicines.ListByPharmacist(gctx, pharmacistID)
		if err != nil {
			log.Warn().Err(err).Str("pharmacist", pharmacistID).Msg("analytics: catalog unavailable, reporting without inventory")
			medicines = nil
			degraded = true
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := analytics.BuildReport(orders, medicines, s.now())

	if degraded {
		return &report, nil
	}
	if err := s.cache.SetReport(ctx, pharmacistID, &report); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set report failed")
	}

	return &report, nil
}

// Invalidate drops the cached report after a change to the pharmacist's orders or catalog
func (s *AnalyticsService) Invalidate(ctx context.Context, pharmacistID string) {
	invalidateReport(ctx, s.cache, pharmacistID)
}

func invalidateReport(ctx context.Context, reportCache cache.ReportCache, pharmacistID string) {
	if reportCache == nil || pharmacistID == "" {
		return
	}
	if err := reportCache.Invalidate(ctx, pharmacistID); err != nil {
		log.Warn().Err(err).Str("pharmacist", pharmacistID).Msg("analytics: cache invalidate failed")
	}
}
