package models

import "time"

type UserRole string

const (
	RoleNormal UserRole = "normal"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	PreferredCurrency string    `db:"preferred_currency" json:"preferred_currency"`
	Role              UserRole  `db:"role" json:"role"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Group struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

type Membership struct {
	UserID   string     `db:"user_id" json:"user_id"`
	GroupID  string     `db:"group_id" json:"group_id"`
	Role     MemberRole `db:"role" json:"role"`
	JoinedAt time.Time  `db:"joined_at" json:"joined_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

type Invitation struct {
	ID         string           `db:"id" json:"id"`
	GroupID    string           `db:"group_id" json:"group_id"`
	Token      string           `db:"token" json:"token"`
	CreatedBy  string           `db:"created_by" json:"created_by"`
	InviteeID  *string          `db:"invitee_id" json:"invitee_id,omitempty"`
	Status     InvitationStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	ExpiresAt  *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	AcceptedAt *time.Time       `db:"accepted_at" json:"accepted_at,omitempty"`
	Used       bool             `db:"used" json:"used"`
}

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

type Category struct {
	ID       string       `db:"id" json:"id"`
	Name     string       `db:"name" json:"name"`
	Type     CategoryType `db:"type" json:"type"`
	Color    string       `db:"color" json:"color"`
	Icon     string       `db:"icon" json:"icon"`
	IsGlobal bool         `db:"is_global" json:"is_global"`
	OwnerID  *string      `db:"owner_id" json:"owner_id,omitempty"`
}

// RecordKind selects the expense or income table; the two record types
// are structurally identical.
type RecordKind string

const (
	RecordExpense RecordKind = "expense"
	RecordIncome  RecordKind = "income"
)

type Record struct {
	ID            string    `db:"id" json:"id"`
	Description   string    `db:"description" json:"description"`
	Amount        int64     `db:"amount" json:"amount"`
	Date          time.Time `db:"date" json:"date"`
	PaymentMethod *string   `db:"payment_method" json:"payment_method,omitempty"`
	Note          string    `db:"note" json:"note"`
	Recurring     bool      `db:"recurring" json:"recurring"`
	CategoryID    *string   `db:"category_id" json:"category_id,omitempty"`
	OwnerID       string    `db:"owner_id" json:"owner_id"`
	GroupID       *string   `db:"group_id" json:"group_id,omitempty"`
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

type Goal struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Target      int64      `db:"target_amount" json:"target_amount"`
	Accumulated int64      `db:"accumulated_amount" json:"accumulated_amount"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status      GoalStatus `db:"status" json:"status"`
	OwnerID     string     `db:"owner_id" json:"owner_id"`
	GroupID     *string    `db:"group_id" json:"group_id,omitempty"`
}

type Contribution struct {
	ID        string    `db:"id" json:"id"`
	GoalID    string    `db:"goal_id" json:"goal_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Amount    int64     `db:"amount" json:"amount"`
	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
