package models

import (
	"gorm.io/datatypes"
)

// Notification types understood by the platform. The first three are the
// generic severities; the rest map to domain events that fan into the
// notification feed.
const (
	NotificationTypeInfo         = "info"
	NotificationTypeWarning      = "warning"
	NotificationTypeAlert        = "alert"
	NotificationTypeSystem       = "system"
	NotificationTypeSecurity     = "security"
	NotificationTypeAccount      = "account"
	NotificationTypeMessage      = "message"
	NotificationTypeJob          = "job"
	NotificationTypeNews         = "news"
	NotificationTypeComment      = "comment"
	NotificationTypeLike         = "like"
	NotificationTypeRating       = "rating"
	NotificationTypeRental       = "rental"
	NotificationTypeAdvert       = "advert"
	NotificationTypeProfile      = "profile"
	NotificationTypeVerification = "verification"
	NotificationTypePayment      = "payment"
	NotificationTypeSupport      = "support"
)

// NotificationTypes enumerates every accepted notification type.
var NotificationTypes = []string{
	NotificationTypeInfo,
	NotificationTypeWarning,
	NotificationTypeAlert,
	NotificationTypeSystem,
	NotificationTypeSecurity,
	NotificationTypeAccount,
	NotificationTypeMessage,
	NotificationTypeJob,
	NotificationTypeNews,
	NotificationTypeComment,
	NotificationTypeLike,
	NotificationTypeRating,
	NotificationTypeRental,
	NotificationTypeAdvert,
	NotificationTypeProfile,
	NotificationTypeVerification,
	NotificationTypePayment,
	NotificationTypeSupport,
}

// IsValidNotificationType reports whether value is a known notification type.
func IsValidNotificationType(value string) bool {
	for _, t := range NotificationTypes {
		if t == value {
			return true
		}
	}
	return false
}

// Notification is a user-scoped message record. Every query against this
// table is filtered by UserID; a notification is never visible to anyone
// but its owner.
type Notification struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1;index:idx_notifications_user_type,priority:1" json:"user_id"`
	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Message string `gorm:"type:text;not null" json:"message"`
	Type    string `gorm:"column:notification_type;type:varchar(20);not null;default:'info';index:idx_notifications_user_type,priority:2" json:"notification_type"`
	Read    bool   `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"read"`
	Link    string `gorm:"type:text" json:"link"`

	// Data holds type-specific metadata (event ids, actor names, ...).
	Data datatypes.JSON `json:"data"`
}
