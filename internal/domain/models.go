// backend-go/internal/domain/models.go
package domain

import (
	"strings"
	"time"
)

// Role identifies what an account is allowed to do
type Role string

const (
	RoleCustomer   Role = "customer"
	RolePharmacist Role = "pharmacist"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePharmacist, RoleAdmin:
		return true
	}
	return false
}

// Account represents a customer, pharmacist or admin
type Account struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	PharmacyName  string     `json:"pharmacyName,omitempty"`
	Address       string     `json:"address,omitempty"`
	PostalCode    string     `json:"postalCode,omitempty"`
	LicenseNumber string     `json:"licenseNumber,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	IsVerified    bool       `json:"isVerified"`
	IsAvailable   bool       `json:"isAvailable"`
	OTPHash       string     `json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsPharmacist is a shorthand used by the search join and role checks
func (a *Account) IsPharmacist() bool {
	return a != nil && a.Role == RolePharmacist
}

// Medicine is an inventory row owned by exactly one pharmacist
type Medicine struct {
	ID           string    `json:"id"`
	PharmacistID string    `json:"pharmacistId"`
	Name         string    `json:"name"`
	BatchNumber  string    `json:"batchNumber"`
	Category     string    `json:"category"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Description  string    `json:"description,omitempty"`
	Stock        int       `json:"stock"`
	ReorderLevel int       `json:"reorderLevel"`
	Price        float64   `json:"price"`
	ExpiryDate   time.Time `json:"expiryDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultReorderLevel applies when a medicine is created without a threshold
const DefaultReorderLevel = 10

// DefaultCategory is used when a medicine has no category
const DefaultCategory = "Other"

// CategoryOrDefault returns the medicine category, falling back to "Other"
func (m Medicine) CategoryOrDefault() string {
	if c := strings.TrimSpace(m.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// LineItem is a snapshot of a medicine at the time it was sold or quoted
type LineItem struct {
	MedicineID string  `json:"medicineId,omitempty"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Category   string  `json:"category,omitempty"`
}

// Order is an immutable sales record with a mutable status
type Order struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customerId"`
	CustomerName    string        `json:"customerName,omitempty"`
	PharmacistID    string        `json:"pharmacistId"`
	PharmacyName    string        `json:"pharmacyName,omitempty"`
	PrescriptionID  string        `json:"prescriptionId,omitempty"`
	Items           []LineItem    `json:"items"`
	Total           float64       `json:"total"`
	Status          OrderStatus   `json:"status"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Prescription is an uploaded prescription image that pharmacists quote and approve
type Prescription struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customerId"`
	ImageKey        string             `json:"imageKey"`
	ImageURL        string             `json:"imageUrl,omitempty"`
	PatientName     string             `json:"patientName"`
	Phone           string             `json:"phone"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Notes           string             `json:"notes,omitempty"`
	Items           []LineItem         `json:"items,omitempty"`
	Total           float64            `json:"total"`
	Status          PrescriptionStatus `json:"status"`
	QuotedBy        string             `json:"quotedBy,omitempty"`
	QuotedAt        *time.Time         `json:"quotedAt,omitempty"`
	ApprovedBy      string             `json:"approvedBy,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	OrderID         string             `json:"orderId,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// IsQuoted reports whether a pharmacist has priced the prescription
func (p *Prescription) IsQuoted() bool {
	return p.Status == PrescriptionPending && len(p.Items) > 0
}

// Notification is a message addressed to one account
type Notification struct {
	ID             string           `json:"id"`
	RecipientID    string           `json:"recipientId"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	OrderID        string           `json:"orderId,omitempty"`
	PrescriptionID string           `json:"prescriptionId,omitempty"`
	MedicineID     string           `json:"medicineId,omitempty"`
	Read           bool             `json:"read"`
	CreatedAt      time.Time        `json:"createdAt"`
}
