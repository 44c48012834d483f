package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type medicineRepository struct {
	coll *mongo.Collection
}

func NewMedicineRepository(db *mongo.Database) repository.MedicineRepository {
	return &medicineRepository{coll: db.Collection(medicinesCollection)}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *domain.Medicine) error {
	if _, err := toObjectID(medicine.PharmacistID); err != nil {
		return fmt.Errorf("medicine owner: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	medicine.CreatedAt = now
	medicine.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, newMedicineDocument(medicine))
	if err != nil {
		return writeError("medicine batch "+medicine.BatchNumber, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		medicine.ID = oid.Hex()
	}
	return nil
}

func (r *medicineRepository) FindByID(ctx context.Context, id string) (*domain.Medicine, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc medicineDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, findError("medicine", err)
	}
	medicine := doc.toDomain()
	return &medicine, nil
}

func (r *medicineRepository) ListByPharmacist(ctx context.Context, pharmacistID string) ([]domain.Medicine, error) {
	oid, err := toObjectID(pharmacistID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"pharmacistId": oid}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// SearchInStock checks stock after decoding: older documents store it as a
// string, which a server-side $gt would never match.
func (r *medicineRepository) SearchInStock(ctx context.Context, query string) ([]domain.Medicine, error) {
	filter := bson.M{
		"name": primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(query)), Options: "i"},
	}
	matches, err := r.find(ctx, filter, options.Find())
	if err != nil {
		return nil, err
	}
	inStock := matches[:0]
	for _, m := range matches {
		if m.Stock > 0 {
			inStock = append(inStock, m)
		}
	}
	return inStock, nil
}

func (r *medicineRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Medicine, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find medicines: %w", err)
	}
	var docs []medicineDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode medicines: %w", err)
	}

	medicines := make([]domain.Medicine, 0, len(docs))
	for _, d := range docs {
		medicines = append(medicines, d.toDomain())
	}
	return medicines, nil
}

func (r *medicineRepository) Update(ctx context.Context, medicine *domain.Medicine) error {
	oid, err := toObjectID(medicine.ID)
	if err != nil {
		return err
	}
	owner, err := toObjectID(medicine.PharmacistID)
	if err != nil {
		return err
	}

	medicine.UpdatedAt = time.Now()
	set := bson.M{
		"name":         strings.TrimSpace(medicine.Name),
		"batchNumber":  strings.TrimSpace(medicine.BatchNumber),
		"category":     medicine.Category,
		"manufacturer": medicine.Manufacturer,
		"description":  medicine.Description,
		"stock":        int64(medicine.Stock),
		"reorderLevel": int64(medicine.ReorderLevel),
		"price":        medicine.Price,
		"expiryDate":   medicine.ExpiryDate,
		"updatedAt":    medicine.UpdatedAt,
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "pharmacistId": owner}, bson.M{"$set": set})
	if err != nil {
		return writeError("medicine batch "+medicine.BatchNumber, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("medicine %s: %w", medicine.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *medicineRepository) Delete(ctx context.Context, id, pharmacistID string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	owner, err := toObjectID(pharmacistID)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "pharmacistId": owner})
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("medicine %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *medicineRepository) DecrementStock(ctx context.Context, id string, qty int) (*domain.Medicine, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidInput)
	}
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "stock": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc medicineDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, fmt.Errorf("medicine %s has fewer than %d units: %w", id, qty, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	medicine := doc.toDomain()
	return &medicine, nil
}

func (r *medicineRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return nil
}
