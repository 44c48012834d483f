package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/analytics"
	"github.com/andresuchdata/pharmacare/backend-go/internal/cache"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
)

// MedicineInput is the full set of editable medicine fields
type MedicineInput struct {
	Name         string
	BatchNumber  string
	Category     string
	Manufacturer string
	Description  string
	Stock        int
	ReorderLevel *int
	Price        float64
	ExpiryDate   time.Time
}

// MedicineUpdate changes only the fields that are set
type MedicineUpdate struct {
	Name         *string
	BatchNumber  *string
	Category     *string
	Manufacturer *string
	Description  *string
	Stock        *int
	ReorderLevel *int
	Price        *float64
	ExpiryDate   *time.Time
}

type InventoryService struct {
	medicines repository.MedicineRepository
	accounts  repository.AccountRepository
	snapshots repository.AlertSnapshotRepository
	reports   cache.ReportCache
	searches  cache.SearchCache
	now       Clock
}

func NewInventoryService(
	medicines repository.MedicineRepository,
	accounts repository.AccountRepository,
	snapshots repository.AlertSnapshotRepository,
	reports cache.ReportCache,
	searches cache.SearchCache,
	now Clock,
) *InventoryService {
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	if searches == nil {
		searches = cache.NewNoopSearchCache()
	}
	if now == nil {
		now = NewClock(nil)
	}
	return &InventoryService{
		medicines: medicines,
		accounts:  accounts,
		snapshots: snapshots,
		reports:   reports,
		searches:  searches,
		now:       now,
	}
}

func (s *InventoryService) List(ctx context.Context, pharmacistID string) ([]domain.Medicine, error) {
	return s.medicines.ListByPharmacist(ctx, pharmacistID)
}

func (s *InventoryService) Get(ctx context.Context, pharmacistID, id string) (*domain.Medicine, error) {
	medicine, err := s.medicines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if medicine.PharmacistID != pharmacistID {
		return nil, fmt.Errorf("medicine %s belongs to another pharmacist: %w", id, domain.ErrForbidden)
	}
	return medicine, nil
}

func (s *InventoryService) Create(ctx context.Context, pharmacistID string, in MedicineInput) (*domain.Medicine, error) {
	medicine := &domain.Medicine{
		PharmacistID: pharmacistID,
		Name:         strings.TrimSpace(in.Name),
		BatchNumber:  strings.TrimSpace(in.BatchNumber),
		Category:     strings.TrimSpace(in.Category),
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Description:  in.Description,
		Stock:        in.Stock,
		ReorderLevel: domain.DefaultReorderLevel,
		Price:        in.Price,
		ExpiryDate:   in.ExpiryDate,
	}
	if in.ReorderLevel != nil {
		medicine.ReorderLevel = *in.ReorderLevel
	}
	if err := validateMedicine(medicine); err != nil {
		return nil, err
	}

	if err := s.medicines.Create(ctx, medicine); err != nil {
		return nil, err
	}

	s.catalogChanged(ctx, pharmacistID)
	return medicine, nil
}

func (s *InventoryService) Update(ctx context.Context, pharmacistID, id string, in MedicineUpdate) (*domain.Medicine, error) {
	medicine, err := s.Get(ctx, pharmacistID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		medicine.Name = strings.TrimSpace(*in.Name)
	}
	if in.BatchNumber != nil {
		medicine.BatchNumber = strings.TrimSpace(*in.BatchNumber)
	}
	if in.Category != nil {
		medicine.Category = strings.TrimSpace(*in.Category)
	}
	if in.Manufacturer != nil {
		medicine.Manufacturer = strings.TrimSpace(*in.Manufacturer)
	}
	if in.Description != nil {
		medicine.Description = *in.Description
	}
	if in.Stock != nil {
		medicine.Stock = *in.Stock
	}
	if in.ReorderLevel != nil {
		medicine.ReorderLevel = *in.ReorderLevel
	}
	if in.Price != nil {
		medicine.Price = *in.Price
	}
	if in.ExpiryDate != nil {
		medicine.ExpiryDate = *in.ExpiryDate
	}
	if err := validateMedicine(medicine); err != nil {
		return nil, err
	}

	if err := s.medicines.Update(ctx, medicine); err != nil {
		return nil, err
	}

	s.catalogChanged(ctx, pharmacistID)
	return medicine, nil
}

func (s *InventoryService) Delete(ctx context.Context, pharmacistID, id string) error {
	if err := s.medicines.Delete(ctx, id, pharmacistID); err != nil {
		return err
	}
	s.catalogChanged(ctx, pharmacistID)
	return nil
}

func (s *InventoryService) Alerts(ctx context.Context, pharmacistID string) (domain.InventoryAlerts, error) {
	medicines, err := s.medicines.ListByPharmacist(ctx, pharmacistID)
	if err != nil {
		return domain.InventoryAlerts{}, err
	}
	return analytics.Alerts(medicines, s.now()), nil
}

func (s *InventoryService) LowStock(ctx context.Context, pharmacistID string) ([]domain.MedicineAlert, error) {
	medicines, err := s.medicines.ListByPharmacist(ctx, pharmacistID)
	if err != nil {
		return nil, err
	}
	return analytics.LowStock(medicines, s.now()), nil
}

func (s *InventoryService) ExpiringSoon(ctx context.Context, pharmacistID string) ([]domain.MedicineAlert, error) {
	medicines, err := s.medicines.ListByPharmacist(ctx, pharmacistID)
	if err != nil {
		return nil, err
	}
	return analytics.ExpiringSoon(medicines, s.now()), nil
}

// Search finds in-stock medicines at available pharmacies sharing the searcher's postal code.
func (s *InventoryService) Search(ctx context.Context, searcherID, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}

	searcher, err := s.accounts.FindByID(ctx, searcherID)
	if err != nil {
		return nil, err
	}
	postalCode := strings.TrimSpace(searcher.PostalCode)
	if err := analytics.ValidateSearch(query, postalCode); err != nil {
		return nil, err
	}

	if results, ok, err := s.searches.GetResults(ctx, query, postalCode); err == nil && ok {
		return results, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("inventory: cache get search failed")
	}

	candidates, err := s.medicines.SearchInStock(ctx, query)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(candidates))
	for _, m := range candidates {
		ownerIDs = append(ownerIDs, m.PharmacistID)
	}
	owners := make(map[string]domain.Account)
	if len(ownerIDs) > 0 {
		accounts, err := s.accounts.FindByIDs(ctx, ownerIDs)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			owners[a.ID] = a
		}
	}

	results := analytics.MatchInventory(query, postalCode, candidates, owners)

	if err := s.searches.SetResults(ctx, query, postalCode, results); err != nil {
		log.Warn().Err(err).Msg("inventory: cache set search failed")
	}
	return results, nil
}

func (s *InventoryService) AlertHistory(ctx context.Context, pharmacistID string, days int) ([]domain.AlertSnapshot, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}
	return s.snapshots.History(ctx, pharmacistID, days)
}

func (s *InventoryService) catalogChanged(ctx context.Context, pharmacistID string) {
	invalidateReport(ctx, s.reports, pharmacistID)
	if err := s.searches.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("inventory: cache invalidate search failed")
	}
}

func validateMedicine(m *domain.Medicine) error {
	switch {
	case m.Name == "":
		return fmt.Errorf("medicine name is required: %w", domain.ErrInvalidInput)
	case m.BatchNumber == "":
		return fmt.Errorf("batch number is required: %w", domain.ErrInvalidInput)
	case m.Stock < 0:
		return fmt.Errorf("stock cannot be negative: %w", domain.ErrInvalidInput)
	case m.ReorderLevel < 0:
		return fmt.Errorf("reorder level cannot be negative: %w", domain.ErrInvalidInput)
	case m.Price <= 0:
		return fmt.Errorf("price must be positive: %w", domain.ErrInvalidInput)
	case m.ExpiryDate.IsZero():
		return fmt.Errorf("expiry date is required: %w", domain.ErrInvalidInput)
	}
	return nil
}
