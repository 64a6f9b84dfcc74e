package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/talentlink/talentlink/internal/cache"
	"github.com/talentlink/talentlink/internal/models"
	apperrors "github.com/talentlink/talentlink/pkg/errors"
	"github.com/talentlink/talentlink/pkg/logger"
	"github.com/talentlink/talentlink/pkg/metrics"
	"github.com/talentlink/talentlink/pkg/sanitize"
)

const (
	maxTitleLength   = 200
	maxMessageLength = 2000

	// unreadCountTTL bounds how stale a cached unread badge may be. Every
	// mutation invalidates the owner's entry, so the TTL only matters when
	// an invalidation is lost.
	unreadCountTTL = 5 * time.Minute
)

func unreadCountKey(userID string) string {
	return "unread_count:" + userID
}

// NotificationDTO is the API representation of a notification.
type NotificationDTO struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"notification_type"`
	Read      bool           `json:"read"`
	Link      string         `json:"link"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	UserID  string
	Title   string
	Message string
	Type    string
	Link    string
	Data    map[string]any
}

// SystemNotificationInput describes an admin broadcast. When TargetUserIDs is
// empty the broadcast fans out to every active user.
type SystemNotificationInput struct {
	Title         string
	Message       string
	Link          string
	Data          map[string]any
	TargetUserIDs []string
}

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID string
	Type   string
	Unread *bool
	Limit  int
	Offset int
}

// NotificationStatistics aggregates a user's notification counts.
type NotificationStatistics struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	Read   int64            `json:"read"`
	ByType map[string]int64 `json:"by_type"`
}

// NotificationService manages user notifications and the unread-count cache.
type NotificationService struct {
	db    *gorm.DB
	cache cache.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewNotificationService constructs a NotificationService. The cache store is
// required; use a DatabaseStore when Redis is not configured.
func NewNotificationService(db *gorm.DB, store cache.Store) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	if store == nil {
		return nil, errors.New("notification service: cache store is required")
	}
	return &NotificationService{
		db:    db,
		cache: store,
		log:   logger.WithModule("notifications"),
		now:   time.Now,
	}, nil
}

// Create validates, sanitizes, and persists a new unread notification, then
// invalidates the owner's unread-count cache entry.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	title := sanitize.Text(input.Title)
	message := sanitize.Text(input.Message)
	notificationType := strings.TrimSpace(input.Type)
	if notificationType == "" {
		notificationType = models.NotificationTypeInfo
	}
	link := strings.TrimSpace(input.Link)

	if fields := validateNotificationFields(title, message, notificationType, link); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
		Link:    link,
	}

	if input.Data != nil {
		encoded, err := json.Marshal(input.Data)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal data: %w", err)
		}
		notification.Data = datatypes.JSON(encoded)
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}

	s.invalidateUnreadCount(ctx, userID)
	metrics.NotificationsCreated.WithLabelValues(notificationType).Inc()
	s.log.Info("notification created",
		zap.String("user_id", userID),
		zap.String("type", notificationType),
	)

	dto := mapNotification(notification)
	return &dto, nil
}

// CreateSystem fans out one notification per target user. Each creation is
// independent: a failure for one user is logged and skipped without aborting
// the rest of the broadcast. Returns the number of records created.
//
// Privilege is enforced at the transport layer before this method runs.
func (s *NotificationService) CreateSystem(ctx context.Context, input SystemNotificationInput) (int64, error) {
	targets, err := s.resolveTargets(ctx, input.TargetUserIDs)
	if err != nil {
		return 0, err
	}

	var created int64
	for _, userID := range targets {
		_, err := s.Create(ctx, CreateNotificationInput{
			UserID:  userID,
			Title:   input.Title,
			Message: input.Message,
			Type:    models.NotificationTypeSystem,
			Link:    input.Link,
			Data:    input.Data,
		})
		if err != nil {
			if apperrors.IsValidation(err) {
				// Bad payload fails identically for every target; surface it.
				return created, err
			}
			s.log.Warn("system notification skipped",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		created++
	}

	s.log.Info("system notification broadcast", zap.Int64("created", created))
	return created, nil
}

func (s *NotificationService) resolveTargets(ctx context.Context, requested []string) ([]string, error) {
	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_active = ?", true)

	if len(requested) > 0 {
		query = query.Where("id IN ?", requested)
	}

	var ids []string
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("notification service: resolve broadcast targets: %w", err)
	}
	return ids, nil
}

// List returns the user's notifications ordered newest-first.
func (s *NotificationService) List(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if t := strings.TrimSpace(input.Type); t != "" {
		query = query.Where("notification_type = ?", t)
	}
	if input.Unread != nil {
		query = query.Where(map[string]interface{}{"read": !*input.Unread})
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

// UnreadCount returns the user's unread tally, served from the cache when a
// fresh entry exists and recomputed from the store otherwise.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	key := unreadCountKey(userID)

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("unread count cache read failed", zap.String("user_id", userID), zap.Error(err))
	} else if ok {
		if count, parseErr := strconv.ParseInt(string(raw), 10, 64); parseErr == nil {
			metrics.UnreadCountLookups.WithLabelValues("hit").Inc()
			return count, nil
		}
	}

	metrics.UnreadCountLookups.WithLabelValues("miss").Inc()

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where(map[string]interface{}{"read": false}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification service: count unread: %w", err)
	}

	if err := s.cache.Set(ctx, key, []byte(strconv.FormatInt(count, 10)), unreadCountTTL); err != nil {
		s.log.Warn("unread count cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return count, nil
}

// MarkRead flips a notification to read. Marking an already-read notification
// succeeds silently; a notification that does not exist or belongs to another
// user yields NotFound either way, so callers cannot probe other users' data.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	if !notification.Read {
		if err := s.db.WithContext(ctx).
			Model(&notification).
			Update("read", true).Error; err != nil {
			return nil, fmt.Errorf("notification service: mark read: %w", err)
		}
		notification.Read = true
		s.invalidateUnreadCount(ctx, userID)
	}

	dto := mapNotification(notification)
	return &dto, nil
}

// MarkAllRead flips every unread notification owned by the user and returns
// the number of rows changed. A second call returns zero.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where(map[string]interface{}{"read": false}).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: mark all read: %w", result.Error)
	}

	s.invalidateUnreadCount(ctx, userID)
	return result.RowsAffected, nil
}

// Delete removes a notification owned by the user, with the same NotFound
// information-hiding as MarkRead.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	s.invalidateUnreadCount(ctx, userID)
	return nil
}

// Statistics aggregates the user's totals and per-type breakdown.
func (s *NotificationService) Statistics(ctx context.Context, userID string) (*NotificationStatistics, error) {
	type typeCount struct {
		Type  string
		Count int64
	}

	var perType []typeCount
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("notification_type AS type, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("notification_type").
		Scan(&perType).Error; err != nil {
		return nil, fmt.Errorf("notification service: statistics: %w", err)
	}

	var unread int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where(map[string]interface{}{"read": false}).
		Count(&unread).Error; err != nil {
		return nil, fmt.Errorf("notification service: statistics unread: %w", err)
	}

	stats := &NotificationStatistics{
		Unread: unread,
		ByType: make(map[string]int64, len(perType)),
	}
	for _, row := range perType {
		stats.Total += row.Count
		stats.ByType[row.Type] = row.Count
	}
	stats.Read = stats.Total - stats.Unread

	return stats, nil
}

// CleanupOlderThan deletes notifications created before the cutoff and
// returns the number removed. Intended for scheduled maintenance.
func (s *NotificationService) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("notification service: retention days must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -days)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: cleanup: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsCleaned.Add(float64(result.RowsAffected))
		s.log.Info("old notifications cleaned up",
			zap.Int64("deleted", result.RowsAffected),
			zap.Int("retention_days", days),
		)
	}
	return result.RowsAffected, nil
}

// invalidateUnreadCount drops the cached badge for a user. Cache failures are
// logged, not returned: the entry self-corrects within the TTL window.
func (s *NotificationService) invalidateUnreadCount(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, unreadCountKey(userID)); err != nil {
		s.log.Warn("unread count invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func validateNotificationFields(title, message, notificationType, link string) map[string][]string {
	fields := make(map[string][]string)

	if title == "" {
		fields["title"] = append(fields["title"], "This field is required.")
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		fields["title"] = append(fields["title"],
			fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
	}

	if message == "" {
		fields["message"] = append(fields["message"], "This field is required.")
	} else if utf8.RuneCountInString(message) > maxMessageLength {
		fields["message"] = append(fields["message"],
			fmt.Sprintf("Ensure this field has no more than %d characters.", maxMessageLength))
	}

	if !models.IsValidNotificationType(notificationType) {
		fields["notification_type"] = append(fields["notification_type"],
			fmt.Sprintf("%q is not a valid choice.", notificationType))
	}

	if link != "" {
		parsed, err := url.Parse(link)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			fields["link"] = append(fields["link"], "Enter a valid URL.")
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		Title:     row.Title,
		Message:   row.Message,
		Type:      row.Type,
		Read:      row.Read,
		Link:      row.Link,
		Data:      decodeJSON(row.Data),
		CreatedAt: row.CreatedAt,
	}
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
