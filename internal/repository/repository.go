// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
)

// Lookups return domain.ErrNotFound when nothing matches, and conditional
// updates return domain.ErrConflict when their precondition no longer holds.

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Account, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Account, error)
	ListPharmacists(ctx context.Context) ([]domain.Account, error)
	UpdateProfile(ctx context.Context, account *domain.Account) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetOTP(ctx context.Context, id, otpHash string, expiresAt *time.Time) error
	SetVerified(ctx context.Context, id string, verified bool) error
}

type MedicineRepository interface {
	Create(ctx context.Context, medicine *domain.Medicine) error
	FindByID(ctx context.Context, id string) (*domain.Medicine, error)
	ListByPharmacist(ctx context.Context, pharmacistID string) ([]domain.Medicine, error)
	// SearchInStock returns medicines of every pharmacist whose name contains
	// query case-insensitively and whose stock is positive.
	SearchInStock(ctx context.Context, query string) ([]domain.Medicine, error)
	Update(ctx context.Context, medicine *domain.Medicine) error
	Delete(ctx context.Context, id, pharmacistID string) error
	// DecrementStock removes qty units only if at least qty are available and
	// returns the medicine as it is after the update.
	DecrementStock(ctx context.Context, id string, qty int) (*domain.Medicine, error)
	IncrementStock(ctx context.Context, id string, qty int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByPharmacist returns every order of the pharmacist, newest first.
	// An empty status means all statuses.
	ListByPharmacist(ctx context.Context, pharmacistID string, status domain.OrderStatus) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *domain.Prescription) error
	FindByID(ctx context.Context, id string) (*domain.Prescription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Prescription, error)
	ListPending(ctx context.Context) ([]domain.Prescription, error)
	SaveQuote(ctx context.Context, id, pharmacistID string, items []domain.LineItem, total float64, at time.Time) error
	// Approve moves a pending prescription to approved and returns it as
	// stored after the update. Only the first caller wins.
	Approve(ctx context.Context, id, pharmacistID string, at time.Time) (*domain.Prescription, error)
	RevertApproval(ctx context.Context, id string) error
	SetOrderID(ctx context.Context, id, orderID string) error
	Reject(ctx context.Context, id, pharmacistID, reason string, at time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
	// ExistsSince reports whether the recipient already got a notification of
	// this type about the medicine at or after since.
	ExistsSince(ctx context.Context, recipientID string, kind domain.NotificationType, medicineID string, since time.Time) (bool, error)
}

type AlertSnapshotRepository interface {
	Upsert(ctx context.Context, snapshot domain.AlertSnapshot) error
	History(ctx context.Context, pharmacistID string, days int) ([]domain.AlertSnapshot, error)
}
