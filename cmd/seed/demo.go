package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/auth"
	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/mongodb"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type demoMedicine struct {
	name         string
	category     string
	manufacturer string
	stock        int
	price        float64
	expiresIn    time.Duration
}

var demoCatalog = []demoMedicine{
	{"Paracetamol 500mg", "Pain Relief", "Acme Pharma", 120, 2.50, 365 * 24 * time.Hour},
	{"Ibuprofen 400mg", "Pain Relief", "Acme Pharma", 8, 4.20, 200 * 24 * time.Hour},
	{"Amoxicillin 250mg", "Antibiotics", "Medico Labs", 40, 9.75, 20 * 24 * time.Hour},
	{"Cetirizine 10mg", "Allergy", "Medico Labs", 3, 3.10, 400 * 24 * time.Hour},
	{"Omeprazole 20mg", "Digestive", "Healwell", 60, 6.80, 10 * 24 * time.Hour},
	{"Vitamin D3 1000IU", "Supplements", "Healwell", 90, 5.25, 500 * 24 * time.Hour},
	{"Salbutamol Inhaler", "Respiratory", "BreatheCo", 15, 12.40, 300 * 24 * time.Hour},
	{"Metformin 500mg", "Diabetes", "Medico Labs", 0, 7.90, 250 * 24 * time.Hour},
}

type demoAccounts struct {
	pharmacists []domain.Account
	customers   []domain.Account
}

func runDemoSeed(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Context

	if c.Bool("reset") {
		log.Warn().Str("database", store.DB.Name()).Msg("dropping database")
		if err := store.DB.Drop(ctx); err != nil {
			return fmt.Errorf("drop database: %w", err)
		}
		if err := mongodb.EnsureIndexes(ctx, store.DB); err != nil {
			return fmt.Errorf("recreate indexes: %w", err)
		}
	}

	hasher := auth.NewHasher(config.Load().Auth.BcryptCost)
	passwordHash, err := hasher.Hash(c.String("password"))
	if err != nil {
		return err
	}

	accountRepo := mongodb.NewAccountRepository(store.DB)
	medicineRepo := mongodb.NewMedicineRepository(store.DB)
	orderRepo := mongodb.NewOrderRepository(store.DB)

	log.Info().Msg("Starting demo seeding...")

	accounts, err := seedDemoAccounts(ctx, accountRepo, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	for _, pharmacist := range accounts.pharmacists {
		medicines, err := seedDemoInventory(ctx, medicineRepo, pharmacist.ID)
		if err != nil {
			return fmt.Errorf("failed to seed inventory for %s: %w", pharmacist.Email, err)
		}
		created, err := seedDemoOrders(ctx, orderRepo, pharmacist, accounts.customers, medicines, c.Int("days"))
		if err != nil {
			return fmt.Errorf("failed to seed orders for %s: %w", pharmacist.Email, err)
		}
		log.Info().
			Str("pharmacist", pharmacist.Email).
			Int("medicines", len(medicines)).
			Int("orders", created).
			Msg("seeded pharmacy")
	}

	log.Info().Msg("Demo seeding completed successfully!")
	return nil
}

func seedDemoAccounts(ctx context.Context, repo repository.AccountRepository, passwordHash string) (*demoAccounts, error) {
	rating := 4.7
	pharmacists := []domain.Account{
		{Name: "Riya Shah", Email: "riverside@pharmacare.test", Phone: "+15550000101", PharmacyName: "Riverside Pharmacy", Address: "12 River Rd", PostalCode: "10001", LicenseNumber: "LIC-10001-A", Rating: &rating, IsVerified: true, IsAvailable: true},
		{Name: "Tom Okafor", Email: "hillside@pharmacare.test", Phone: "+15550000102", PharmacyName: "Hillside Chemists", Address: "4 Hill St", PostalCode: "10001", IsAvailable: true},
	}
	customers := []domain.Account{
		{Name: "Ann Lee", Email: "ann@pharmacare.test", Phone: "+15550000201", Address: "7 Elm Ave", PostalCode: "10001", IsVerified: true},
		{Name: "Bob Diaz", Email: "bob@pharmacare.test", Phone: "+15550000202", Address: "9 Oak Ln", PostalCode: "10002", IsVerified: true},
	}

	out := &demoAccounts{}
	for _, a := range pharmacists {
		a.Role = domain.RolePharmacist
		a.PasswordHash = passwordHash
		account, err := createOrLoadAccount(ctx, repo, a)
		if err != nil {
			return nil, err
		}
		out.pharmacists = append(out.pharmacists, *account)
	}
	for _, a := range customers {
		a.Role = domain.RoleCustomer
		a.PasswordHash = passwordHash
		account, err := createOrLoadAccount(ctx, repo, a)
		if err != nil {
			return nil, err
		}
		out.customers = append(out.customers, *account)
	}
	return out, nil
}

// createOrLoadAccount keeps reruns idempotent by reusing an existing account with the same email
func createOrLoadAccount(ctx context.Context, repo repository.AccountRepository, account domain.Account) (*domain.Account, error) {
	err := repo.Create(ctx, &account)
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("create %s: %w", account.Email, err)
	}
	return repo.FindByEmail(ctx, account.Email)
}

func seedDemoInventory(ctx context.Context, repo repository.MedicineRepository, pharmacistID string) ([]domain.Medicine, error) {
	existing, err := repo.ListByPharmacist(ctx, pharmacistID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	now := time.Now()
	var out []domain.Medicine
	for i, item := range demoCatalog {
		medicine := domain.Medicine{
			PharmacistID: pharmacistID,
			Name:         item.name,
			BatchNumber:  fmt.Sprintf("DEMO-%03d", i+1),
			Category:     item.category,
			Manufacturer: item.manufacturer,
			Stock:        item.stock,
			ReorderLevel: domain.DefaultReorderLevel,
			Price:        item.price,
			ExpiryDate:   now.Add(item.expiresIn),
		}
		if err := repo.Create(ctx, &medicine); err != nil {
			return nil, fmt.Errorf("create %s: %w", medicine.Name, err)
		}
		out = append(out, medicine)
	}
	return out, nil
}

var demoStatuses = []domain.OrderStatus{
	domain.OrderCompleted, domain.OrderDelivered, domain.OrderCompleted,
	domain.OrderPending, domain.OrderProcessing, domain.OrderCancelled,
}

// seedDemoOrders writes back-dated orders so the revenue chart has history.
// Stock is left untouched; the order rows are a synthetic sales record.
func seedDemoOrders(ctx context.Context, repo repository.OrderRepository, pharmacist domain.Account, customers []domain.Account, medicines []domain.Medicine, days int) (int, error) {
	existing, err := repo.ListByPharmacist(ctx, pharmacist.ID, "")
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 || len(customers) == 0 || len(medicines) == 0 || days <= 0 {
		return 0, nil
	}

	rng := rand.New(rand.NewSource(int64(len(pharmacist.ID)) + time.Now().UnixNano()))
	now := time.Now()
	created := 0
	for day := 0; day < days; day++ {
		perDay := 1 + rng.Intn(3)
		for n := 0; n < perDay; n++ {
			customer := customers[rng.Intn(len(customers))]
			items, total := randomBasket(rng, medicines)
			createdAt := now.AddDate(0, 0, -day).Add(-time.Duration(rng.Intn(8)) * time.Hour)
			order := domain.Order{
				CustomerID:      customer.ID,
				CustomerName:    customer.Name,
				PharmacistID:    pharmacist.ID,
				PharmacyName:    pharmacist.PharmacyName,
				Items:           items,
				Total:           total,
				Status:          demoStatuses[rng.Intn(len(demoStatuses))],
				PaymentMethod:   domain.PaymentCOD,
				DeliveryAddress: customer.Address,
				Phone:           customer.Phone,
				CreatedAt:       createdAt,
				UpdatedAt:       createdAt,
			}
			if err := repo.Create(ctx, &order); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func randomBasket(rng *rand.Rand, medicines []domain.Medicine) ([]domain.LineItem, float64) {
	count := 1 + rng.Intn(3)
	seen := make(map[string]bool, count)
	var (
		items []domain.LineItem
		total float64
	)
	for i := 0; i < count; i++ {
		m := medicines[rng.Intn(len(medicines))]
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		qty := float64(1 + rng.Intn(4))
		items = append(items, domain.LineItem{
			MedicineID: m.ID,
			Name:       m.Name,
			Quantity:   qty,
			Price:      m.Price,
			Category:   m.CategoryOrDefault(),
		})
		total += qty * m.Price
	}
	return items, roundCents(total)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func runAdminSeed(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	if len(c.String("password")) < auth.MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLen)
	}

	hash, err := auth.NewHasher(config.Load().Auth.BcryptCost).Hash(c.String("password"))
	if err != nil {
		return err
	}
	admin := domain.Account{
		Name:         c.String("name"),
		Email:        strings.ToLower(strings.TrimSpace(c.String("email"))),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
	}
	if err := mongodb.NewAccountRepository(store.DB).Create(c.Context, &admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Str("id", admin.ID).Str("email", admin.Email).Msg("admin created")
	return nil
}
