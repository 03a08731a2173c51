package db

import (
	"time"
)

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:128;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// ComplimentTerm is an externally-managed taxonomy term (icon + label)
// a compliment is tagged with.
type ComplimentTerm struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"size:64;not null"`
	IconURL string `gorm:"size:255"`
}

// Compliment is one user's tagged, optionally-messaged token of
// appreciation to another. Rows are immutable after insert: the only
// lifecycle is create → read → delete.
//
// Index:
//   - idx_receiver_sender(receiver_id, sender_id)
//     Read efficiency for profile listings and per-pair lookups; it does
//     not enforce uniqueness — concurrent compliments between the same
//     two users are independent rows.
//
// Fields:
//   - TermID: taxonomy term the compliment is tagged with (required).
//   - PostID: optional link to a content item the compliment is about.
//   - Message: free text, stored pre-sanitized (tags stripped at write time).
type Compliment struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement"`
	TermID     uint64  `gorm:"not null"`
	PostID     *uint64 `gorm:"default:null"`
	ReceiverID uint64  `gorm:"not null;index:idx_receiver_sender,priority:1"`
	SenderID   uint64  `gorm:"not null;index:idx_receiver_sender,priority:2"`
	Message    string  `gorm:"size:1000"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Activity entry types recorded per compliment.
const (
	ActivityComplimentSent     = "compliment_sent"
	ActivityComplimentReceived = "compliment_received"
)

// ActivityEntry is one member-feed record. Every compliment produces two:
// one owned by the sender (secondary = receiver) and one owned by the
// receiver (secondary = sender), both tagged with the compliment id as item.
type ActivityEntry struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	UserID          uint64    `gorm:"not null;index"`
	Type            string    `gorm:"size:32;not null"`
	ItemID          uint64    `gorm:"not null;index"`
	SecondaryItemID uint64    `gorm:"not null;index"`
	RecordedAt      time.Time `gorm:"autoCreateTime"`
}

// ActionNewCompliment is the single notification action this feature emits.
const ActionNewCompliment = "new_compliment"

// Notification is a persisted in-app notification item keyed by
// (item_id = sender, user_id = receiver, action). The unique index makes
// repeated compliments from the same sender upsert rather than duplicate.
type Notification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ItemID    uint64    `gorm:"not null;uniqueIndex:idx_item_user_action,priority:1"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_item_user_action,priority:2"`
	Action    string    `gorm:"size:32;not null;uniqueIndex:idx_item_user_action,priority:3"`
	Unread    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Meta keys persisted in user_metas.
const (
	MetaNotificationPref = "notification_on_compliments"
	MetaHasNotified      = "compliments_has_notified"
)

// UserMeta is a per-user key/value row. Holds the email opt-out preference
// and the sender's has-notified receiver set (JSON-encoded id list).
type UserMeta struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_user_meta_key,priority:1"`
	MetaKey   string `gorm:"size:64;not null;uniqueIndex:idx_user_meta_key,priority:2"`
	MetaValue string `gorm:"type:text"`
}

// Option is a site option row; tracks the recorded schema version so
// install stays idempotent.
type Option struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:255;not null"`
}
