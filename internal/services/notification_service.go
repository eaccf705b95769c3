package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
	"github.com/sergiovidalh/recluta/internal/realtime"
	apperrors "github.com/sergiovidalh/recluta/pkg/errors"
	"github.com/sergiovidalh/recluta/pkg/logger"
	"github.com/sergiovidalh/recluta/pkg/metrics"
)

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID string
	Limit  int
	Offset int
	Unread bool
}

// NotificationEventPayload represents data sent to realtime consumers.
type NotificationEventPayload struct {
	Notification   *models.Notification `json:"notification,omitempty"`
	NotificationID string               `json:"notification_id,omitempty"`
}

// NotificationService resolves domain events into per-recipient notification
// rows and manages their read state. Dispatch runs after the triggering
// mutation commits and is deliberately best-effort: resolution or write
// failures are logged and swallowed, never surfaced to the caller.
type NotificationService struct {
	db  *gorm.DB
	hub *realtime.Hub
	log *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, hub *realtime.Hub) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{
		db:  db,
		hub: hub,
		log: logger.WithModule("notifications"),
	}, nil
}

// Dispatch fans each event out to its resolved recipients, once per recipient
// per event. Errors are aggregated for the log line only.
func (s *NotificationService) Dispatch(ctx context.Context, events ...Event) {
	ctx = ensureContext(ctx)

	for _, event := range events {
		recipients, err := s.resolveRecipients(ctx, event.Recipients)
		if err != nil {
			metrics.NotificationsFailed.Inc()
			s.log.Warn("recipient resolution failed",
				zap.String("type", event.Type),
				zap.Error(err),
			)
			continue
		}
		if len(recipients) == 0 {
			continue
		}

		var metadata datatypes.JSON
		if event.Metadata != nil {
			if data, err := json.Marshal(event.Metadata); err == nil {
				metadata = datatypes.JSON(data)
			}
		}

		severity := event.Severity
		if strings.TrimSpace(severity) == "" {
			severity = "info"
		}

		var failures error
		delivered := 0
		for _, userID := range recipients {
			notification := models.Notification{
				UserID:   userID,
				Type:     event.Type,
				Title:    event.Title,
				Message:  event.Message,
				Severity: severity,
				Metadata: metadata,
			}
			if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
				failures = multierr.Append(failures, fmt.Errorf("user %s: %w", userID, err))
				continue
			}
			delivered++
			s.broadcast(userID, "notification.created", &NotificationEventPayload{
				Notification: &notification,
			})
		}

		metrics.NotificationsDispatched.WithLabelValues(event.Type).Add(float64(delivered))
		if failures != nil {
			metrics.NotificationsFailed.Inc()
			s.log.Warn("notification delivery incomplete",
				zap.String("type", event.Type),
				zap.Int("delivered", delivered),
				zap.Int("recipients", len(recipients)),
				zap.Error(failures),
			)
		}
	}
}

// resolveRecipients expands candidate and client-org selectors into user ids.
// A candidate without a linked user contributes nothing; a client org expands
// to every active profile attached to it.
func (s *NotificationService) resolveRecipients(ctx context.Context, recipients Recipients) ([]string, error) {
	userIDs := append([]string(nil), recipients.UserIDs...)

	if ids := normaliseIDs(recipients.CandidateIDs); len(ids) > 0 {
		var linked []string
		if err := s.db.WithContext(ctx).Model(&models.Candidate{}).
			Where("id IN ? AND user_id IS NOT NULL", ids).
			Pluck("user_id", &linked).Error; err != nil {
			return nil, fmt.Errorf("resolve candidates: %w", err)
		}
		userIDs = append(userIDs, linked...)
	}

	if ids := normaliseIDs(recipients.ClientOrgIDs); len(ids) > 0 {
		var members []string
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("client_org_id IN ? AND is_active = ?", ids, true).
			Pluck("id", &members).Error; err != nil {
			return nil, fmt.Errorf("resolve client orgs: %w", err)
		}
		userIDs = append(userIDs, members...)
	}

	return normaliseIDs(userIDs), nil
}

// ListForUser returns notifications for the supplied user ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, input ListNotificationsInput) ([]models.Notification, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if input.Unread {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(max(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	return rows, nil
}

// MarkRead sets the notification read flag for a user. Re-marking an already
// read notification succeeds without change.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.setReadState(ctx, userID, notificationID, true)
}

// MarkUnread unsets the notification read flag.
func (s *NotificationService) MarkUnread(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.setReadState(ctx, userID, notificationID, false)
}

func (s *NotificationService) setReadState(ctx context.Context, userID, notificationID string, read bool) (*models.Notification, error) {
	ctx = ensureContext(ctx)
	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	updates := map[string]any{"is_read": read}
	var readAt *time.Time
	if read {
		now := time.Now().UTC()
		readAt = &now
		updates["read_at"] = now
	} else {
		updates["read_at"] = nil
	}

	if err := s.db.WithContext(ctx).Model(&notification).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("notification service: update read state: %w", err)
	}

	notification.IsRead = read
	notification.ReadAt = readAt

	s.broadcast(userID, "notification.updated", &NotificationEventPayload{
		Notification:   &notification,
		NotificationID: notification.ID,
	})

	return &notification, nil
}

// MarkAllRead marks all unread notifications for the user as read. Idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}

	s.broadcast(userID, "notification.read_all", nil)
	return nil
}

// Delete removes a notification owned by the supplied user.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	s.broadcast(userID, "notification.deleted", &NotificationEventPayload{
		NotificationID: notificationID,
	})
	return nil
}

// PurgeRead deletes read notifications older than the cutoff and returns the
// number of rows removed. Used by the maintenance sweep.
func (s *NotificationService) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, olderThan).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: purge read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) broadcast(userID, event string, payload *NotificationEventPayload) {
	if s.hub == nil {
		return
	}
	message := realtime.Message{
		Stream: realtime.StreamNotifications,
		Event:  event,
	}
	if payload != nil {
		message.Data = payload
	}
	s.hub.BroadcastToUser(realtime.StreamNotifications, userID, message)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
