package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultNotificationLimit = 50

type notificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &notificationRepository{coll: db.Collection(notificationsCollection)}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	res, err := r.coll.InsertOne(ctx, newNotificationDocument(notification))
	if err != nil {
		return writeError("notification", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		notification.ID = oid.Hex()
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	oid, err := toObjectID(recipientID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"recipientId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	var docs []notificationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}

	notifications := make([]domain.Notification, 0, len(docs))
	for _, d := range docs {
		notifications = append(notifications, d.toDomain())
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	oid, err := toObjectID(recipientID)
	if err != nil {
		return 0, err
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"recipientId": oid, "read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	filter, err := ownedFilter(id, recipientID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	oid, err := toObjectID(recipientID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.UpdateMany(ctx, bson.M{"recipientId": oid, "read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID string) error {
	filter, err := ownedFilter(id, recipientID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *notificationRepository) ExistsSince(ctx context.Context, recipientID string, kind domain.NotificationType, medicineID string, since time.Time) (bool, error) {
	recipient, err := toObjectID(recipientID)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"recipientId": recipient,
		"type":        string(kind),
		"createdAt":   bson.M{"$gte": since},
	}
	if medicineID != "" {
		filter["medicineId"] = optionalObjectID(medicineID)
	}

	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count notifications: %w", err)
	}
	return count > 0, nil
}

func ownedFilter(id, recipientID string) (bson.M, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	recipient, err := toObjectID(recipientID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "recipientId": recipient}, nil
}
