package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type accountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) repository.AccountRepository {
	return &accountRepository{coll: db.Collection(accountsCollection)}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, newAccountDocument(account))
	if err != nil {
		return writeError("account", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid.Hex()
	}
	return nil
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *accountRepository) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"phone": strings.TrimSpace(phone)})
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, findError("account", err)
	}
	account := doc.toDomain()
	return &account, nil
}

func (r *accountRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Account, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		if _, ok := seen[oid]; ok {
			continue
		}
		seen[oid] = struct{}{}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return []domain.Account{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *accountRepository) ListPharmacists(ctx context.Context) ([]domain.Account, error) {
	return r.find(ctx, bson.M{"role": string(domain.RolePharmacist)})
}

func (r *accountRepository) find(ctx context.Context, filter bson.M) ([]domain.Account, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, d.toDomain())
	}
	return accounts, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, account *domain.Account) error {
	set := bson.M{
		"name":         account.Name,
		"pharmacyName": account.PharmacyName,
		"address":      account.Address,
		"postalCode":   strings.TrimSpace(account.PostalCode),
		"isAvailable":  account.IsAvailable,
		"updatedAt":    time.Now(),
	}
	if account.LicenseNumber != "" {
		set["licenseNumber"] = account.LicenseNumber
	}
	return r.updateByID(ctx, account.ID, bson.M{"$set": set})
}

func (r *accountRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()},
		"$unset": bson.M{"otpHash": "", "otpExpiresAt": ""},
	})
}

// SetOTP stores a hashed one-time password; an empty hash clears it.
func (r *accountRepository) SetOTP(ctx context.Context, id, otpHash string, expiresAt *time.Time) error {
	if otpHash == "" || expiresAt == nil {
		return r.updateByID(ctx, id, bson.M{
			"$set":   bson.M{"updatedAt": time.Now()},
			"$unset": bson.M{"otpHash": "", "otpExpiresAt": ""},
		})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"otpHash":      otpHash,
		"otpExpiresAt": *expiresAt,
		"updatedAt":    time.Now(),
	}})
}

func (r *accountRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"isVerified": verified, "updatedAt": time.Now()}})
}

func (r *accountRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return writeError("account", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
