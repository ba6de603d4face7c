// Package api holds the JSON wire types exchanged between the purchase
// request API server and its clients.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Costs travel as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role values as stored and transmitted.
const (
	RoleManager  = "Responsabile"
	RoleEmployee = "Dipendente"
)

// Status values of a purchase request.
const (
	StatusPending  = "In attesa"
	StatusApproved = "Approvata"
	StatusRejected = "Rifiutata"
)

// MinJustificationLength is the minimum number of characters of a justification.
const MinJustificationLength = 10

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleManager || role == RoleEmployee
}

// ValidStatus reports whether status is one of the three lifecycle states.
func ValidStatus(status string) bool {
	return status == StatusPending || status == StatusApproved || status == StatusRejected
}

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// IsManager reports whether the user holds the manager role.
func (u User) IsManager() bool {
	return u.Role == RoleManager
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Category struct {
	ID          string              `json:"_id"`
	Description string              `json:"descrizione"`
	UnitCost    decimal.NullDecimal `json:"costo"`
}

type PurchaseRequest struct {
	ID            string          `json:"_id"`
	Owner         UserRef         `json:"idUtente"`
	CategoryID    string          `json:"idCategoria"`
	Quantity      int             `json:"quantita"`
	Cost          decimal.Decimal `json:"costo"`
	Justification string          `json:"motivazione"`
	RequestedAt   time.Time       `json:"dataRichiesta"`
	Status        string          `json:"stato"`
	DecidedAt     *time.Time      `json:"dataapprovazione,omitempty"`
	Approver      *UserRef        `json:"idapprovatore,omitempty"`
}

// IsPending reports whether the request has not been decided yet.
func (r PurchaseRequest) IsPending() bool {
	return r.Status == StatusPending
}

// --- Request payloads ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Username  string `json:"username" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"required,oneof=Responsabile Dipendente"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PurchaseRequestInput is the body of create and update calls. Cost is sent
// for parity with the form but the server recomputes it.
type PurchaseRequestInput struct {
	CategoryID    string          `json:"idCategoria" binding:"required"`
	Quantity      int             `json:"quantita" binding:"required,min=1"`
	Cost          decimal.Decimal `json:"costo"`
	Justification string          `json:"motivazione" binding:"required,min=10"`
}

type ChangeStatusRequest struct {
	Status string `json:"stato" binding:"required,oneof='In attesa' Approvata Rifiutata"`
}

type CategoryInput struct {
	Description string              `json:"descrizione" binding:"required"`
	UnitCost    decimal.NullDecimal `json:"costo"`
}

// --- Read models ---

type StatusCount struct {
	Status string          `json:"stato"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"totale"`
}

type RequestStats struct {
	ByStatus      []StatusCount   `json:"byStatus"`
	ApprovedTotal decimal.Decimal `json:"approvedTotal"`
}

type AuditLog struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Action    string `json:"action"`
	EntityID  string `json:"entity_id"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}

// Event is pushed on the websocket feed after every request mutation.
type Event struct {
	Type    string           `json:"type"`
	Request *PurchaseRequest `json:"request,omitempty"`
	ID      string           `json:"id,omitempty"`
	// OwnerID is set on events that carry no Request.
	OwnerID string `json:"ownerId,omitempty"`
}

// Owner returns the id of the user the affected request belongs to.
func (e Event) Owner() string {
	if e.Request != nil {
		return e.Request.Owner.ID
	}
	return e.OwnerID
}

const (
	EventRequestCreated = "request.created"
	EventRequestUpdated = "request.updated"
	EventRequestDeleted = "request.deleted"
	EventRequestStatus  = "request.status"
)
