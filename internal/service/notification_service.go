package service

import (
	"context"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify stores a notification. Failures are logged and swallowed: a missing
// notification never fails the action that triggered it.
func (s *NotificationService) Notify(ctx context.Context, n domain.Notification) {
	if n.RecipientID == "" {
		return
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		log.Warn().Err(err).
			Str("recipient", n.RecipientID).
			Str("type", string(n.Type)).
			Msg("notification: create failed")
	}
}

// NotifyOnce skips the notification when the recipient already got one of the
// same type about the same medicine since the given instant.
func (s *NotificationService) NotifyOnce(ctx context.Context, n domain.Notification, since time.Time) (bool, error) {
	exists, err := s.repo.ExistsSince(ctx, n.RecipientID, n.Type, n.MedicineID, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return false, err
	}
	return true, nil
}

func (s *NotificationService) List(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, recipientID, id string) error {
	return s.repo.Delete(ctx, id, recipientID)
}
