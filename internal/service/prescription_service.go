package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/cache"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/andresuchdata/pharmacare/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultMaxUploadBytes = 5 << 20

type UploadPrescriptionInput struct {
	PatientName     string
	Phone           string
	DeliveryAddress string
	Notes           string
	Image           []byte
	ContentType     string
}

type QuoteItem struct {
	MedicineID string
	Name       string
	Quantity   float64
	Price      float64
}

type PrescriptionService struct {
	prescriptions repository.PrescriptionRepository
	orders        repository.OrderRepository
	accounts      repository.AccountRepository
	storage       storage.ObjectStorage
	notifier      *NotificationService
	reports       cache.ReportCache
	maxUpload     int64
	now           Clock
}

func NewPrescriptionService(
	prescriptions repository.PrescriptionRepository,
	orders repository.OrderRepository,
	accounts repository.AccountRepository,
	objects storage.ObjectStorage,
	notifier *NotificationService,
	reports cache.ReportCache,
	maxUpload int64,
	now Clock,
) *PrescriptionService {
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	if now == nil {
		now = NewClock(nil)
	}
	return &PrescriptionService{
		prescriptions: prescriptions,
		orders:        orders,
		accounts:      accounts,
		storage:       objects,
		notifier:      notifier,
		reports:       reports,
		maxUpload:     maxUpload,
		now:           now,
	}
}

// Upload stores the image and records a pending prescription, then tells the
// available pharmacies in the customer's postal code about it.
func (s *PrescriptionService) Upload(ctx context.Context, customerID string, in UploadPrescriptionInput) (*domain.Prescription, error) {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	if in.PatientName == "" || in.Phone == "" || in.DeliveryAddress == "" {
		return nil, fmt.Errorf("patient name, phone and delivery address are required: %w", domain.ErrInvalidInput)
	}
	if len(in.Image) == 0 {
		return nil, fmt.Errorf("prescription image is required: %w", domain.ErrInvalidInput)
	}
	if int64(len(in.Image)) > s.maxUpload {
		return nil, fmt.Errorf("prescription image exceeds %d bytes: %w", s.maxUpload, domain.ErrInvalidInput)
	}
	ext, ok := storage.ExtensionFor(in.ContentType)
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q: %w", in.ContentType, domain.ErrInvalidInput)
	}

	customer, err := s.accounts.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	key := storage.PrescriptionKey(customerID, ext)
	if err := s.storage.UploadObject(ctx, key, in.Image, in.ContentType); err != nil {
		return nil, err
	}

	prescription := &domain.Prescription{
		CustomerID:      customerID,
		ImageKey:        key,
		PatientName:     in.PatientName,
		Phone:           in.Phone,
		DeliveryAddress: in.DeliveryAddress,
		Notes:           strings.TrimSpace(in.Notes),
		Status:          domain.PrescriptionPending,
	}
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("prescription: failed to remove orphaned image")
		}
		return nil, err
	}
	s.attachURL(ctx, prescription)

	s.notifyNearbyPharmacists(ctx, customer, prescription)
	return prescription, nil
}

func (s *PrescriptionService) notifyNearbyPharmacists(ctx context.Context, customer *domain.Account, p *domain.Prescription) {
	pharmacists, err := s.accounts.ListPharmacists(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("prescription: could not list pharmacists to notify")
		return
	}
	postal := strings.TrimSpace(customer.PostalCode)
	for _, ph := range pharmacists {
		if !ph.IsAvailable || postal == "" || strings.TrimSpace(ph.PostalCode) != postal {
			continue
		}
		s.notifier.Notify(ctx, domain.Notification{
			RecipientID:    ph.ID,
			Type:           domain.NotificationPrescriptionUploaded,
			Title:          "New prescription",
			Message:        fmt.Sprintf("%s uploaded a prescription for %s", customer.Name, p.PatientName),
			PrescriptionID: p.ID,
		})
	}
}

func (s *PrescriptionService) ListForCustomer(ctx context.Context, customerID string) ([]domain.Prescription, error) {
	list, err := s.prescriptions.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.attachURLs(ctx, list)
	return list, nil
}

func (s *PrescriptionService) ListPending(ctx context.Context) ([]domain.Prescription, error) {
	list, err := s.prescriptions.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	s.attachURLs(ctx, list)
	return list, nil
}

func (s *PrescriptionService) Get(ctx context.Context, actor Actor, id string) (*domain.Prescription, error) {
	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsCustomer() && p.CustomerID != actor.ID {
		return nil, fmt.Errorf("prescription %s: %w", id, domain.ErrForbidden)
	}
	s.attachURL(ctx, p)
	return p, nil
}

// Quote prices a pending prescription. A later quote replaces an earlier one
// until the prescription is approved or rejected.
func (s *PrescriptionService) Quote(ctx context.Context, pharmacistID, id string, items []QuoteItem) (*domain.Prescription, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("quote needs at least one item: %w", domain.ErrInvalidInput)
	}

	lines := make([]domain.LineItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.Quantity <= 0 || item.Price <= 0 {
			return nil, fmt.Errorf("each quoted item needs a name, quantity and price: %w", domain.ErrInvalidInput)
		}
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromFloat(item.Quantity)))
		lines = append(lines, domain.LineItem{
			MedicineID: item.MedicineID,
			Name:       name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}

	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PrescriptionPending {
		return nil, fmt.Errorf("prescription %s is already %s: %w", id, p.Status, domain.ErrConflict)
	}

	now := s.now()
	amount := total.Round(2).InexactFloat64()
	if err := s.prescriptions.SaveQuote(ctx, id, pharmacistID, lines, amount, now); err != nil {
		return nil, err
	}
	p.Items = lines
	p.Total = amount
	p.QuotedBy = pharmacistID
	p.QuotedAt = &now

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID:    p.CustomerID,
		Type:           domain.NotificationPrescriptionQuoted,
		Title:          "Prescription quoted",
		Message:        fmt.Sprintf("Your prescription for %s was quoted at %.2f", p.PatientName, amount),
		PrescriptionID: p.ID,
	})

	s.attachURL(ctx, p)
	return p, nil
}

// Approve turns a quoted prescription into an order for the approving
// pharmacist. When several pharmacists approve at once only the first
// succeeds; the others get domain.ErrConflict.
func (s *PrescriptionService) Approve(ctx context.Context, pharmacistID, id string) (*domain.Order, error) {
	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PrescriptionPending {
		return nil, fmt.Errorf("prescription %s is already %s: %w", id, p.Status, domain.ErrConflict)
	}
	if !p.IsQuoted() {
		return nil, fmt.Errorf("prescription %s must be quoted before approval: %w", id, domain.ErrInvalidInput)
	}

	pharmacist, err := s.accounts.FindByID(ctx, pharmacistID)
	if err != nil {
		return nil, err
	}

	approved, err := s.prescriptions.Approve(ctx, id, pharmacistID, s.now())
	if err != nil {
		return nil, err
	}
	if len(approved.Items) == 0 {
		s.revertApproval(ctx, id)
		return nil, fmt.Errorf("prescription %s must be quoted before approval: %w", id, domain.ErrInvalidInput)
	}
	p = approved

	customerName := p.PatientName
	if customer, err := s.accounts.FindByID(ctx, p.CustomerID); err == nil {
		customerName = customer.Name
	}

	order := &domain.Order{
		CustomerID:      p.CustomerID,
		CustomerName:    customerName,
		PharmacistID:    pharmacist.ID,
		PharmacyName:    pharmacist.PharmacyName,
		PrescriptionID:  p.ID,
		Items:           p.Items,
		Total:           p.Total,
		Status:          domain.OrderPending,
		PaymentMethod:   domain.PaymentCOD,
		DeliveryAddress: p.DeliveryAddress,
		Phone:           p.Phone,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.revertApproval(ctx, id)
		return nil, fmt.Errorf("create order for prescription %s: %w", id, err)
	}

	linkCtx, cancel := detached(ctx)
	defer cancel()
	if err := s.prescriptions.SetOrderID(linkCtx, id, order.ID); err != nil {
		log.Error().Err(err).Str("prescription", id).Str("order", order.ID).Msg("prescription: failed to link order")
	}

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID:    p.CustomerID,
		Type:           domain.NotificationPrescriptionApproved,
		Title:          "Prescription approved",
		Message:        fmt.Sprintf("%s approved your prescription and created an order", pharmacist.PharmacyName),
		OrderID:        order.ID,
		PrescriptionID: p.ID,
	})
	invalidateReport(ctx, s.reports, pharmacist.ID)

	return order, nil
}

func (s *PrescriptionService) Reject(ctx context.Context, pharmacistID, id, reason string) (*domain.Prescription, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("rejection reason is required: %w", domain.ErrInvalidInput)
	}

	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prescriptions.Reject(ctx, id, pharmacistID, reason, s.now()); err != nil {
		return nil, err
	}
	p.Status = domain.PrescriptionRejected
	p.RejectionReason = reason

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID:    p.CustomerID,
		Type:           domain.NotificationPrescriptionRejected,
		Title:          "Prescription rejected",
		Message:        reason,
		PrescriptionID: p.ID,
	})

	s.attachURL(ctx, p)
	return p, nil
}

func (s *PrescriptionService) attachURLs(ctx context.Context, list []domain.Prescription) {
	for i := range list {
		s.attachURL(ctx, &list[i])
	}
}

func (s *PrescriptionService) attachURL(ctx context.Context, p *domain.Prescription) {
	if p.ImageKey == "" {
		return
	}
	url, err := s.storage.ObjectURL(ctx, p.ImageKey)
	if err != nil {
		log.Warn().Err(err).Str("key", p.ImageKey).Msg("prescription: could not build image url")
		return
	}
	p.ImageURL = url
}

// revertApproval puts the prescription back to pending after the order could
// not be created, even when the request context is already cancelled.
func (s *PrescriptionService) revertApproval(ctx context.Context, id string) {
	cleanupCtx, cancel := detached(ctx)
	defer cancel()
	if err := s.prescriptions.RevertApproval(cleanupCtx, id); err != nil {
		log.Error().Err(err).Str("prescription", id).Msg("prescription: failed to revert approval")
	}
}
