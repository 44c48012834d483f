package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type prescriptionRepository struct {
	coll *mongo.Collection
}

func NewPrescriptionRepository(db *mongo.Database) repository.PrescriptionRepository {
	return &prescriptionRepository{coll: db.Collection(prescriptionsCollection)}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *domain.Prescription) error {
	now := time.Now()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now
	if prescription.Status == "" {
		prescription.Status = domain.PrescriptionPending
	}

	res, err := r.coll.InsertOne(ctx, newPrescriptionDocument(prescription))
	if err != nil {
		return writeError("prescription", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		prescription.ID = oid.Hex()
	}
	return nil
}

func (r *prescriptionRepository) FindByID(ctx context.Context, id string) (*domain.Prescription, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc prescriptionDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, findError("prescription", err)
	}
	prescription := doc.toDomain()
	return &prescription, nil
}

func (r *prescriptionRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Prescription, error) {
	oid, err := toObjectID(customerID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"customerId": oid})
}

func (r *prescriptionRepository) ListPending(ctx context.Context) ([]domain.Prescription, error) {
	return r.find(ctx, bson.M{"status": string(domain.PrescriptionPending)})
}

func (r *prescriptionRepository) find(ctx context.Context, filter bson.M) ([]domain.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find prescriptions: %w", err)
	}
	var docs []prescriptionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode prescriptions: %w", err)
	}

	prescriptions := make([]domain.Prescription, 0, len(docs))
	for _, d := range docs {
		prescriptions = append(prescriptions, d.toDomain())
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) SaveQuote(ctx context.Context, id, pharmacistID string, items []domain.LineItem, total float64, at time.Time) error {
	return r.updatePending(ctx, id, bson.M{
		"items":     newLineItemDocuments(items),
		"total":     total,
		"quotedBy":  optionalObjectID(pharmacistID),
		"quotedAt":  at,
		"updatedAt": at,
	})
}

// Approve returns the document as written, so the caller bills the quote that
// was actually approved rather than one it read earlier.
func (r *prescriptionRepository) Approve(ctx context.Context, id, pharmacistID string, at time.Time) (*domain.Prescription, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "status": string(domain.PrescriptionPending)}
	update := bson.M{"$set": bson.M{
		"status":     string(domain.PrescriptionApproved),
		"approvedBy": optionalObjectID(pharmacistID),
		"updatedAt":  at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc prescriptionDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("prescription %s is no longer pending: %w", id, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("approve prescription: %w", err)
	}
	prescription := doc.toDomain()
	return &prescription, nil
}

func (r *prescriptionRepository) Reject(ctx context.Context, id, pharmacistID, reason string, at time.Time) error {
	return r.updatePending(ctx, id, bson.M{
		"status":          string(domain.PrescriptionRejected),
		"approvedBy":      optionalObjectID(pharmacistID),
		"rejectionReason": reason,
		"updatedAt":       at,
	})
}

// updatePending is the compare-and-set every review action goes through: the
// write only lands while the prescription is still pending.
func (r *prescriptionRepository) updatePending(ctx context.Context, id string, set bson.M) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.PrescriptionPending)},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update prescription: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("prescription %s is no longer pending: %w", id, domain.ErrConflict)
	}
	return nil
}

func (r *prescriptionRepository) RevertApproval(ctx context.Context, id string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.PrescriptionApproved), "orderId": bson.M{"$exists": false}},
		bson.M{
			"$set":   bson.M{"status": string(domain.PrescriptionPending), "updatedAt": time.Now()},
			"$unset": bson.M{"approvedBy": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("revert prescription approval: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) SetOrderID(ctx context.Context, id, orderID string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	order, err := toObjectID(orderID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"orderId": order, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("link prescription order: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("prescription %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
