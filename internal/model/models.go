// Package model defines the data models for the activity points system.
package model

import "time"

// Role identifies the kind of account a user holds.
type Role string

// User roles.
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// RegistrationStatus is the lifecycle state of an event registration.
type RegistrationStatus string

// Registration statuses. Only attended registrations contribute points.
const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationAttended   RegistrationStatus = "attended"
	RegistrationMissed     RegistrationStatus = "missed"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// OrderStatus is the fulfillment state of a shop order.
type OrderStatus string

// Order statuses. Every status except cancelled counts as spent points.
const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// User represents a student or administrator account.
//
// TotalEarnedPoints and PointsAvailable are derived caches: they are
// recomputed wholesale from the source tables and must only ever be
// written by the balance reconciler.
type User struct {
	ID                int64     `db:"id"`
	Name              string    `db:"name"`
	Role              Role      `db:"role"`
	AdminPoints       int64     `db:"admin_points"`
	TotalEarnedPoints int64     `db:"total_earned_points"`
	PointsAvailable   int64     `db:"points_available"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Event represents a school activity students can attend.
// Points is admin-mutable at any time; edits are backfilled to all
// current attendees via a scoped reconcile.
type Event struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

// EventRegistration links a user to an event.
type EventRegistration struct {
	ID        int64              `db:"id"`
	UserID    int64              `db:"user_id"`
	EventID   int64              `db:"event_id"`
	Status    RegistrationStatus `db:"status"`
	CreatedAt time.Time          `db:"created_at"`
}

// Achievement represents an earnable badge worth points.
// Requirements is an optional human-authored unlock condition; a nil or
// empty value means the achievement is granted by admins only and is
// never auto-evaluated.
type Achievement struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Points       int64     `db:"points"`
	Requirements *string   `db:"requirements"`
	CreatedAt    time.Time `db:"created_at"`
}

// UserAchievement links a user to an earned achievement.
// The (UserID, AchievementID) pair is unique: an achievement can be
// earned at most once per user.
type UserAchievement struct {
	UserID        int64     `db:"user_id"`
	AchievementID int64     `db:"achievement_id"`
	AwardedAt     time.Time `db:"awarded_at"`
}

// Order represents shop spend. Points are held the moment an order is
// placed, not on delivery.
type Order struct {
	ID          int64       `db:"id"`
	UserID      int64       `db:"user_id"`
	TotalAmount int64       `db:"total_amount"`
	Status      OrderStatus `db:"status"`
	CreatedAt   time.Time   `db:"created_at"`
}

// Balance holds the two derived point fields computed by a reconcile.
type Balance struct {
	TotalEarned int64
	Available   int64
}

// Notification types emitted toward the notification collaborator.
const (
	NotificationAchievementEarned = "achievement_earned"
)

// Notification is a domain event handed to the external notification
// subsystem. Delivery, read state and storage are not our concern.
type Notification struct {
	UserID    int64
	Type      string
	Title     string
	Message   string
	RelatedID int64
}
