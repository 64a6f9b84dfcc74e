package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talentlink/talentlink/internal/models"
	"github.com/talentlink/talentlink/pkg/logger"
)

// broadcastLimit caps event fan-outs that target "all active users" so a
// single content event cannot write an unbounded number of rows.
const broadcastLimit = 100

// Notifier maps platform events onto typed notifications. Callers fire and
// forget: a failed notification is logged, never propagated, because the
// triggering operation (login, message send, ...) has already succeeded.
type Notifier struct {
	notifications *NotificationService
	db            *gorm.DB
	log           *zap.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(db *gorm.DB, notifications *NotificationService) (*Notifier, error) {
	if db == nil {
		return nil, errors.New("notifier: db is required")
	}
	if notifications == nil {
		return nil, errors.New("notifier: notification service is required")
	}
	return &Notifier{
		notifications: notifications,
		db:            db,
		log:           logger.WithModule("notifier"),
	}, nil
}

// LoginSucceeded records a security notification for a successful login.
func (n *Notifier) LoginSucceeded(ctx context.Context, userID, ipAddress string) {
	message := "Successful login to your account"
	if ipAddress != "" {
		message += " from IP: " + ipAddress
	}

	n.create(ctx, CreateNotificationInput{
		UserID:  userID,
		Title:   "Login Successful",
		Message: message,
		Type:    models.NotificationTypeSecurity,
	})
}

// PasswordChanged notifies the owner that their password was updated.
func (n *Notifier) PasswordChanged(ctx context.Context, userID, ipAddress string) {
	message := "Your password has been changed successfully"
	if ipAddress != "" {
		message += " from IP: " + ipAddress
	}

	n.create(ctx, CreateNotificationInput{
		UserID:  userID,
		Title:   "Password Changed",
		Message: message,
		Type:    models.NotificationTypeSecurity,
	})
}

// SuspiciousActivity warns the owner about unusual account activity.
func (n *Notifier) SuspiciousActivity(ctx context.Context, userID, activityType, ipAddress string) {
	message := fmt.Sprintf("Suspicious %s detected on your account", activityType)
	if ipAddress != "" {
		message += " from IP: " + ipAddress
	}

	n.create(ctx, CreateNotificationInput{
		UserID:  userID,
		Title:   "Suspicious Activity Detected",
		Message: message,
		Type:    models.NotificationTypeSecurity,
		Data:    map[string]any{"activity_type": activityType},
	})
}

// NewMessage notifies a recipient about an incoming direct message.
func (n *Notifier) NewMessage(ctx context.Context, recipientID, senderName string) {
	n.create(ctx, CreateNotificationInput{
		UserID:  recipientID,
		Title:   "New Message",
		Message: fmt.Sprintf("You have received a new message from %s", senderName),
		Type:    models.NotificationTypeMessage,
		Data:    map[string]any{"sender_name": senderName},
	})
}

// UserRegistered informs staff accounts that a new user signed up.
func (n *Notifier) UserRegistered(ctx context.Context, newUser *models.User) {
	if newUser == nil {
		return
	}

	staff, err := n.staffIDs(ctx)
	if err != nil {
		n.log.Warn("load staff for registration notice failed", zap.Error(err))
		return
	}

	for _, adminID := range staff {
		n.create(ctx, CreateNotificationInput{
			UserID:  adminID,
			Title:   "New User Registration",
			Message: fmt.Sprintf("A new user, %s, has registered.", newUser.Email),
			Type:    models.NotificationTypeSystem,
			Data: map[string]any{
				"new_user_id":    newUser.ID,
				"new_user_email": newUser.Email,
			},
		})
	}
}

// JobPosted announces a new job to active users other than the poster.
func (n *Notifier) JobPosted(ctx context.Context, posterID, posterName, jobTitle, jobID string) {
	targets, err := n.activeUserIDs(ctx, posterID)
	if err != nil {
		n.log.Warn("load audience for job notice failed", zap.Error(err))
		return
	}

	for _, userID := range targets {
		n.create(ctx, CreateNotificationInput{
			UserID:  userID,
			Title:   "New Job Posted",
			Message: fmt.Sprintf("%s posted a new job: '%s'.", posterName, jobTitle),
			Type:    models.NotificationTypeJob,
			Data: map[string]any{
				"job_id":    jobID,
				"job_title": jobTitle,
				"poster_id": posterID,
			},
		})
	}
}

// RentalReviewed tells an owner the outcome of a rental listing review.
func (n *Notifier) RentalReviewed(ctx context.Context, ownerID, itemName string, approved bool, reason string) {
	title := "Rental Item Approved"
	message := fmt.Sprintf("Your rental item '%s' has been approved.", itemName)
	if !approved {
		title = "Rental Item Rejected"
		message = fmt.Sprintf("Your rental item '%s' has been rejected.", itemName)
		if reason != "" {
			message += " Reason: " + reason
		}
	}

	n.create(ctx, CreateNotificationInput{
		UserID:  ownerID,
		Title:   title,
		Message: message,
		Type:    models.NotificationTypeRental,
		Data:    map[string]any{"item_name": itemName, "approved": approved},
	})
}

// ProfileVerified tells a user the outcome of a profile verification review.
func (n *Notifier) ProfileVerified(ctx context.Context, userID, verificationType string, approved bool, reason string) {
	title := "Profile Verification Approved"
	message := fmt.Sprintf("Your %s verification has been approved.", verificationType)
	if !approved {
		title = "Profile Verification Rejected"
		message = fmt.Sprintf("Your %s verification has been rejected.", verificationType)
		if reason != "" {
			message += " Reason: " + reason
		}
	}

	n.create(ctx, CreateNotificationInput{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    models.NotificationTypeVerification,
		Data:    map[string]any{"verification_type": verificationType, "approved": approved},
	})
}

func (n *Notifier) create(ctx context.Context, input CreateNotificationInput) {
	if _, err := n.notifications.Create(ctx, input); err != nil {
		n.log.Warn("event notification failed",
			zap.String("user_id", input.UserID),
			zap.String("type", input.Type),
			zap.Error(err),
		)
	}
}

func (n *Notifier) staffIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := n.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_staff = ? AND is_active = ?", true, true).
		Pluck("id", &ids).Error
	return ids, err
}

func (n *Notifier) activeUserIDs(ctx context.Context, excludeID string) ([]string, error) {
	var ids []string
	err := n.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_active = ? AND id <> ?", true, excludeID).
		Limit(broadcastLimit).
		Pluck("id", &ids).Error
	return ids, err
}
