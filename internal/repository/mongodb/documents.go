package mongodb

import (
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Numeric and date fields are decoded as interface{} because older records
// carry strings, doubles, int32s and Decimal128 values in the same field.

type accountDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	PasswordHash  string             `bson:"passwordHash,omitempty"`
	Role          string             `bson:"role"`
	PharmacyName  string             `bson:"pharmacyName,omitempty"`
	Address       string             `bson:"address,omitempty"`
	PostalCode    string             `bson:"postalCode,omitempty"`
	LicenseNumber string             `bson:"licenseNumber,omitempty"`
	Rating        interface{}        `bson:"rating,omitempty"`
	IsVerified    bool               `bson:"isVerified"`
	IsAvailable   bool               `bson:"isAvailable"`
	OTPHash       string             `bson:"otpHash,omitempty"`
	OTPExpiresAt  *time.Time         `bson:"otpExpiresAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func newAccountDocument(a *domain.Account) accountDocument {
	doc := accountDocument{
		Name:          a.Name,
		Email:         strings.ToLower(strings.TrimSpace(a.Email)),
		Phone:         strings.TrimSpace(a.Phone),
		PasswordHash:  a.PasswordHash,
		Role:          string(a.Role),
		PharmacyName:  a.PharmacyName,
		Address:       a.Address,
		PostalCode:    strings.TrimSpace(a.PostalCode),
		LicenseNumber: a.LicenseNumber,
		IsVerified:    a.IsVerified,
		IsAvailable:   a.IsAvailable,
		OTPHash:       a.OTPHash,
		OTPExpiresAt:  a.OTPExpiresAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Rating != nil {
		doc.Rating = *a.Rating
	}
	return doc
}

func (d accountDocument) toDomain() domain.Account {
	a := domain.Account{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		PasswordHash:  d.PasswordHash,
		Role:          domain.Role(d.Role),
		PharmacyName:  d.PharmacyName,
		Address:       d.Address,
		PostalCode:    d.PostalCode,
		LicenseNumber: d.LicenseNumber,
		IsVerified:    d.IsVerified,
		IsAvailable:   d.IsAvailable,
		OTPHash:       d.OTPHash,
		OTPExpiresAt:  d.OTPExpiresAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Rating != nil {
		if r := domain.NumberOrZero(d.Rating); r > 0 {
			a.Rating = &r
		}
	}
	return a
}

type medicineDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PharmacistID primitive.ObjectID `bson:"pharmacistId"`
	Name         string             `bson:"name"`
	BatchNumber  string             `bson:"batchNumber"`
	Category     string             `bson:"category,omitempty"`
	Manufacturer string             `bson:"manufacturer,omitempty"`
	Description  string             `bson:"description,omitempty"`
	Stock        interface{}        `bson:"stock"`
	ReorderLevel interface{}        `bson:"reorderLevel,omitempty"`
	Price        interface{}        `bson:"price"`
	ExpiryDate   interface{}        `bson:"expiryDate,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func newMedicineDocument(m *domain.Medicine) medicineDocument {
	doc := medicineDocument{
		PharmacistID: optionalObjectID(m.PharmacistID),
		Name:         strings.TrimSpace(m.Name),
		BatchNumber:  strings.TrimSpace(m.BatchNumber),
		Category:     m.Category,
		Manufacturer: m.Manufacturer,
		Description:  m.Description,
		Stock:        int64(m.Stock),
		ReorderLevel: int64(m.ReorderLevel),
		Price:        m.Price,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if !m.ExpiryDate.IsZero() {
		doc.ExpiryDate = m.ExpiryDate
	}
	return doc
}

func (d medicineDocument) toDomain() domain.Medicine {
	reorder := domain.DefaultReorderLevel
	if d.ReorderLevel != nil {
		reorder = domain.IntOrZero(d.ReorderLevel)
	}
	return domain.Medicine{
		ID:           d.ID.Hex(),
		PharmacistID: hexOrEmpty(d.PharmacistID),
		Name:         d.Name,
		BatchNumber:  d.BatchNumber,
		Category:     d.Category,
		Manufacturer: d.Manufacturer,
		Description:  d.Description,
		Stock:        domain.IntOrZero(d.Stock),
		ReorderLevel: reorder,
		Price:        domain.NumberOrZero(d.Price),
		ExpiryDate:   dateOrZero(d.ExpiryDate),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type lineItemDocument struct {
	MedicineID primitive.ObjectID `bson:"medicineId,omitempty"`
	Name       string             `bson:"name"`
	Quantity   interface{}        `bson:"quantity"`
	Price      interface{}        `bson:"price"`
	Category   string             `bson:"category,omitempty"`
}

func newLineItemDocuments(items []domain.LineItem) []lineItemDocument {
	docs := make([]lineItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, lineItemDocument{
			MedicineID: optionalObjectID(item.MedicineID),
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Category:   item.Category,
		})
	}
	return docs
}

func lineItemsToDomain(docs []lineItemDocument) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.LineItem{
			MedicineID: hexOrEmpty(d.MedicineID),
			Name:       d.Name,
			Quantity:   domain.NumberOrZero(d.Quantity),
			Price:      domain.NumberOrZero(d.Price),
			Category:   d.Category,
		})
	}
	return items
}

type orderDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID      primitive.ObjectID `bson:"customerId"`
	CustomerName    string             `bson:"customerName,omitempty"`
	PharmacistID    primitive.ObjectID `bson:"pharmacistId"`
	PharmacyName    string             `bson:"pharmacyName,omitempty"`
	PrescriptionID  primitive.ObjectID `bson:"prescriptionId,omitempty"`
	Items           []lineItemDocument `bson:"items"`
	Total           interface{}        `bson:"total"`
	Status          string             `bson:"status"`
	PaymentMethod   string             `bson:"paymentMethod,omitempty"`
	DeliveryAddress string             `bson:"deliveryAddress,omitempty"`
	Phone           string             `bson:"phone,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func newOrderDocument(o *domain.Order) orderDocument {
	return orderDocument{
		CustomerID:      optionalObjectID(o.CustomerID),
		CustomerName:    o.CustomerName,
		PharmacistID:    optionalObjectID(o.PharmacistID),
		PharmacyName:    o.PharmacyName,
		PrescriptionID:  optionalObjectID(o.PrescriptionID),
		Items:           newLineItemDocuments(o.Items),
		Total:           o.Total,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		DeliveryAddress: o.DeliveryAddress,
		Phone:           o.Phone,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (d orderDocument) toDomain() domain.Order {
	return domain.Order{
		ID:              d.ID.Hex(),
		CustomerID:      hexOrEmpty(d.CustomerID),
		CustomerName:    d.CustomerName,
		PharmacistID:    hexOrEmpty(d.PharmacistID),
		PharmacyName:    d.PharmacyName,
		PrescriptionID:  hexOrEmpty(d.PrescriptionID),
		Items:           lineItemsToDomain(d.Items),
		Total:           domain.NumberOrZero(d.Total),
		Status:          domain.OrderStatus(d.Status),
		PaymentMethod:   domain.PaymentMethod(d.PaymentMethod),
		DeliveryAddress: d.DeliveryAddress,
		Phone:           d.Phone,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type prescriptionDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID      primitive.ObjectID `bson:"customerId"`
	ImageKey        string             `bson:"imageKey"`
	PatientName     string             `bson:"patientName"`
	Phone           string             `bson:"phone"`
	DeliveryAddress string             `bson:"deliveryAddress"`
	Notes           string             `bson:"notes,omitempty"`
	Items           []lineItemDocument `bson:"items,omitempty"`
	Total           interface{}        `bson:"total,omitempty"`
	Status          string             `bson:"status"`
	QuotedBy        primitive.ObjectID `bson:"quotedBy,omitempty"`
	QuotedAt        *time.Time         `bson:"quotedAt,omitempty"`
	ApprovedBy      primitive.ObjectID `bson:"approvedBy,omitempty"`
	RejectionReason string             `bson:"rejectionReason,omitempty"`
	OrderID         primitive.ObjectID `bson:"orderId,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func newPrescriptionDocument(p *domain.Prescription) prescriptionDocument {
	doc := prescriptionDocument{
		CustomerID:      optionalObjectID(p.CustomerID),
		ImageKey:        p.ImageKey,
		PatientName:     p.PatientName,
		Phone:           p.Phone,
		DeliveryAddress: p.DeliveryAddress,
		Notes:           p.Notes,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if len(p.Items) > 0 {
		doc.Items = newLineItemDocuments(p.Items)
		doc.Total = p.Total
	}
	return doc
}

func (d prescriptionDocument) toDomain() domain.Prescription {
	return domain.Prescription{
		ID:              d.ID.Hex(),
		CustomerID:      hexOrEmpty(d.CustomerID),
		ImageKey:        d.ImageKey,
		PatientName:     d.PatientName,
		Phone:           d.Phone,
		DeliveryAddress: d.DeliveryAddress,
		Notes:           d.Notes,
		Items:           lineItemsToDomain(d.Items),
		Total:           domain.NumberOrZero(d.Total),
		Status:          domain.PrescriptionStatus(d.Status),
		QuotedBy:        hexOrEmpty(d.QuotedBy),
		QuotedAt:        d.QuotedAt,
		ApprovedBy:      hexOrEmpty(d.ApprovedBy),
		RejectionReason: d.RejectionReason,
		OrderID:         hexOrEmpty(d.OrderID),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type notificationDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	RecipientID    primitive.ObjectID `bson:"recipientId"`
	Type           string             `bson:"type"`
	Title          string             `bson:"title"`
	Message        string             `bson:"message"`
	OrderID        primitive.ObjectID `bson:"orderId,omitempty"`
	PrescriptionID primitive.ObjectID `bson:"prescriptionId,omitempty"`
	MedicineID     primitive.ObjectID `bson:"medicineId,omitempty"`
	Read           bool               `bson:"read"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func newNotificationDocument(n *domain.Notification) notificationDocument {
	return notificationDocument{
		RecipientID:    optionalObjectID(n.RecipientID),
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		OrderID:        optionalObjectID(n.OrderID),
		PrescriptionID: optionalObjectID(n.PrescriptionID),
		MedicineID:     optionalObjectID(n.MedicineID),
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}

func (d notificationDocument) toDomain() domain.Notification {
	return domain.Notification{
		ID:             d.ID.Hex(),
		RecipientID:    hexOrEmpty(d.RecipientID),
		Type:           domain.NotificationType(d.Type),
		Title:          d.Title,
		Message:        d.Message,
		OrderID:        hexOrEmpty(d.OrderID),
		PrescriptionID: hexOrEmpty(d.PrescriptionID),
		MedicineID:     hexOrEmpty(d.MedicineID),
		Read:           d.Read,
		CreatedAt:      d.CreatedAt,
	}
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// dateOrZero accepts BSON dates and the string formats legacy imports used
func dateOrZero(v interface{}) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
