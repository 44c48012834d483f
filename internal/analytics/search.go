package analytics

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
)

const (
	DefaultPharmacyRating = 4.5
	DefaultLicenseNumber  = "LIC-PENDING"
)

// ValidateSearch rejects a search without a query or without the searcher's postal code.
func ValidateSearch(query, postalCode string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: medicine name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(postalCode) == "" {
		return fmt.Errorf("%w: postal code is required on your profile to search", domain.ErrInvalidInput)
	}
	return nil
}

// MatchInventory filters candidate medicines to those in stock, whose name contains the
// query (case-insensitive) and whose owner is an available pharmacist in the searcher's
// postal area. owners is keyed by account id. Input order is preserved.
func MatchInventory(query, postalCode string, medicines []domain.Medicine, owners map[string]domain.Account) []domain.SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	area := strings.TrimSpace(postalCode)

	results := make([]domain.SearchResult, 0)
	if needle == "" || area == "" {
		return results
	}

	for _, m := range medicines {
		if m.Stock <= 0 || !strings.Contains(strings.ToLower(m.Name), needle) {
			continue
		}
		owner, ok := owners[m.PharmacistID]
		if !ok || !owner.IsPharmacist() || !owner.IsAvailable {
			continue
		}
		if strings.TrimSpace(owner.PostalCode) != area {
			continue
		}
		results = append(results, project(m, owner))
	}
	return results
}

func project(m domain.Medicine, owner domain.Account) domain.SearchResult {
	rating := DefaultPharmacyRating
	if owner.Rating != nil {
		rating = *owner.Rating
	}
	license := owner.LicenseNumber
	if strings.TrimSpace(license) == "" {
		license = DefaultLicenseNumber
	}

	return domain.SearchResult{
		MedicineID:     m.ID,
		Name:           m.Name,
		Category:       m.CategoryOrDefault(),
		Manufacturer:   m.Manufacturer,
		Price:          Round2(m.Price),
		Stock:          m.Stock,
		ExpiryDate:     m.ExpiryDate,
		PharmacistID:   owner.ID,
		PharmacistName: owner.Name,
		Phone:          owner.Phone,
		PharmacyName:   owner.PharmacyName,
		Address:        owner.Address,
		PostalCode:     owner.PostalCode,
		Rating:         rating,
		LicenseNumber:  license,
	}
}
