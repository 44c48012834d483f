package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/cache"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	MedicineID string
	Quantity   int
}

type CheckoutInput struct {
	PharmacistID    string
	Items           []CheckoutItem
	PaymentMethod   string
	DeliveryAddress string
	Phone           string
}

type OrderService struct {
	orders    repository.OrderRepository
	medicines repository.MedicineRepository
	accounts  repository.AccountRepository
	notifier  *NotificationService
	reports   cache.ReportCache
	searches  cache.SearchCache
}

func NewOrderService(
	orders repository.OrderRepository,
	medicines repository.MedicineRepository,
	accounts repository.AccountRepository,
	notifier *NotificationService,
	reports cache.ReportCache,
	searches cache.SearchCache,
) *OrderService {
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	if searches == nil {
		searches = cache.NewNoopSearchCache()
	}
	return &OrderService{
		orders:    orders,
		medicines: medicines,
		accounts:  accounts,
		notifier:  notifier,
		reports:   reports,
		searches:  searches,
	}
}

type reservation struct {
	medicineID string
	quantity   int
	before     int
	after      domain.Medicine
}

// Checkout reserves stock for every line, snapshots names and prices into the
// order and creates it as pending. Any failure releases what was reserved.
func (s *OrderService) Checkout(ctx context.Context, customerID string, in CheckoutInput) (*domain.Order, error) {
	quantities, ids, err := mergeCheckoutItems(in.Items)
	if err != nil {
		return nil, err
	}
	payment, ok := domain.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, fmt.Errorf("unknown payment method %q: %w", in.PaymentMethod, domain.ErrInvalidInput)
	}

	customer, err := s.accounts.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	pharmacist, err := s.accounts.FindByID(ctx, in.PharmacistID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("pharmacy %s: %w", in.PharmacistID, domain.ErrInvalidInput)
		}
		return nil, err
	}
	if !pharmacist.IsPharmacist() || !pharmacist.IsAvailable {
		return nil, fmt.Errorf("pharmacy %s is not accepting orders: %w", in.PharmacistID, domain.ErrInvalidInput)
	}

	// Validate ownership before touching any stock
	catalog := make(map[string]*domain.Medicine, len(ids))
	for _, id := range ids {
		medicine, err := s.medicines.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("medicine %s: %w", id, domain.ErrInvalidInput)
			}
			return nil, err
		}
		if medicine.PharmacistID != pharmacist.ID {
			return nil, fmt.Errorf("medicine %s is not sold by this pharmacy: %w", id, domain.ErrInvalidInput)
		}
		catalog[id] = medicine
	}

	reserved := make([]reservation, 0, len(ids))
	release := func() {
		cleanupCtx, cancel := detached(ctx)
		defer cancel()
		for _, r := range reserved {
			if err := s.medicines.IncrementStock(cleanupCtx, r.medicineID, r.quantity); err != nil {
				log.Error().Err(err).Str("medicine", r.medicineID).Int("quantity", r.quantity).Msg("order: failed to release reserved stock")
			}
		}
	}

	for _, id := range ids {
		qty := quantities[id]
		after, err := s.medicines.DecrementStock(ctx, id, qty)
		if err != nil {
			release()
			if errors.Is(err, domain.ErrConflict) {
				return nil, fmt.Errorf("not enough stock for %s: %w", catalog[id].Name, domain.ErrConflict)
			}
			return nil, err
		}
		reserved = append(reserved, reservation{medicineID: id, quantity: qty, before: after.Stock + qty, after: *after})
	}

	total := decimal.Zero
	items := make([]domain.LineItem, 0, len(ids))
	for _, id := range ids {
		m := catalog[id]
		qty := quantities[id]
		total = total.Add(decimal.NewFromFloat(m.Price).Mul(decimal.NewFromInt(int64(qty))))
		items = append(items, domain.LineItem{
			MedicineID: m.ID,
			Name:       m.Name,
			Quantity:   float64(qty),
			Price:      m.Price,
			Category:   m.CategoryOrDefault(),
		})
	}

	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		address = customer.Address
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		phone = customer.Phone
	}

	order := &domain.Order{
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		PharmacistID:    pharmacist.ID,
		PharmacyName:    pharmacist.PharmacyName,
		Items:           items,
		Total:           total.Round(2).InexactFloat64(),
		Status:          domain.OrderPending,
		PaymentMethod:   payment,
		DeliveryAddress: address,
		Phone:           phone,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		release()
		return nil, err
	}

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID: pharmacist.ID,
		Type:        domain.NotificationNewOrder,
		Title:       "New order received",
		Message:     fmt.Sprintf("%s placed an order of %d item(s) worth %.2f", customer.Name, len(items), order.Total),
		OrderID:     order.ID,
	})
	for _, r := range reserved {
		if crossedReorderLevel(r.before, r.after) {
			s.notifier.Notify(ctx, domain.Notification{
				RecipientID: pharmacist.ID,
				Type:        domain.NotificationLowStock,
				Title:       "Low stock",
				Message:     fmt.Sprintf("%s is down to %d unit(s)", r.after.Name, r.after.Stock),
				MedicineID:  r.medicineID,
			})
		}
	}

	s.ordersChanged(ctx, pharmacist.ID, true)
	return order, nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *OrderService) ListForPharmacist(ctx context.Context, pharmacistID, status string) ([]domain.Order, error) {
	var filter domain.OrderStatus
	if strings.TrimSpace(status) != "" {
		parsed, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, fmt.Errorf("unknown order status %q: %w", status, domain.ErrInvalidInput)
		}
		filter = parsed
	}
	return s.orders.ListByPharmacist(ctx, pharmacistID, filter)
}

func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrForbidden)
	}
	return order, nil
}

// UpdateStatus moves an order one step along its lifecycle. Pharmacists act on
// their own orders, admins on any, and customers may only cancel their own
// pending orders. Cancelling puts the reserved stock back.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id, status string) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown order status %q: %w", status, domain.ErrInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAdmin():
	case actor.IsPharmacist() && order.PharmacistID == actor.ID:
	case actor.IsCustomer() && order.CustomerID == actor.ID:
		if next != domain.OrderCancelled || order.Status != domain.OrderPending {
			return nil, fmt.Errorf("customers can only cancel pending orders: %w", domain.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrForbidden)
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("cannot move order from %s to %s: %w", order.Status, next, domain.ErrConflict)
	}

	if err := s.orders.UpdateStatus(ctx, id, order.Status, next); err != nil {
		return nil, err
	}
	order.Status = next

	if next == domain.OrderCancelled {
		s.restock(ctx, order)
	}

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID: order.CustomerID,
		Type:        domain.NotificationOrderStatus,
		Title:       "Order " + next.Label(),
		Message:     fmt.Sprintf("Your order from %s is now %s", order.PharmacyName, strings.ToLower(next.Label())),
		OrderID:     order.ID,
	})

	s.ordersChanged(ctx, order.PharmacistID, next == domain.OrderCancelled)
	return order, nil
}

// restock runs after the cancellation is committed, so it must not be cut
// short by the request going away.
func (s *OrderService) restock(ctx context.Context, order *domain.Order) {
	cleanupCtx, cancel := detached(ctx)
	defer cancel()
	for _, item := range order.Items {
		if item.MedicineID == "" || item.Quantity <= 0 {
			continue
		}
		if err := s.medicines.IncrementStock(cleanupCtx, item.MedicineID, int(item.Quantity)); err != nil {
			log.Error().Err(err).Str("order", order.ID).Str("medicine", item.MedicineID).Msg("order: failed to restock cancelled item")
		}
	}
}

func (s *OrderService) ordersChanged(ctx context.Context, pharmacistID string, stockChanged bool) {
	invalidateReport(ctx, s.reports, pharmacistID)
	if !stockChanged {
		return
	}
	if err := s.searches.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("order: cache invalidate search failed")
	}
}

func canView(actor Actor, order *domain.Order) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsPharmacist():
		return order.PharmacistID == actor.ID
	default:
		return order.CustomerID == actor.ID
	}
}

// mergeCheckoutItems sums repeated lines and keeps first-seen order
func mergeCheckoutItems(items []CheckoutItem) (map[string]int, []string, error) {
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("order has no items: %w", domain.ErrInvalidInput)
	}
	quantities := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.MedicineID)
		if id == "" || item.Quantity <= 0 {
			return nil, nil, fmt.Errorf("each item needs a medicine and a positive quantity: %w", domain.ErrInvalidInput)
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] += item.Quantity
	}
	return quantities, ids, nil
}

func crossedReorderLevel(before int, after domain.Medicine) bool {
	return before > after.ReorderLevel && after.Stock <= after.ReorderLevel
}
