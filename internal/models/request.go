package models

import (
	"time"
)

type RequestStatus string

const (
	RequestPending              RequestStatus = "pending"
	RequestAccepted             RequestStatus = "accepted"
	RequestAwaitingConfirmation RequestStatus = "completed_pending_confirmation"
	RequestCompleted            RequestStatus = "completed"
	RequestCancelled            RequestStatus = "cancelled"
	RequestDisputed             RequestStatus = "disputed"
)

// Terminal reports whether no further farmer-side work can happen in s.
// Cancelled is re-enterable only through the buyer's explicit reactivate.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled
}

// CancelActor records which side triggered the most recent cancellation.
type CancelActor string

const (
	CancelledByBuyer  CancelActor = "buyer"
	CancelledByFarmer CancelActor = "farmer"
	CancelledByAdmin  CancelActor = "admin"
)

// ConnectionRequest is a buyer's ask for a crop quantity that a farmer
// fulfills. Status is the sole driver of which actions are valid; every
// mutation after creation goes through the lifecycle engine.
type ConnectionRequest struct {
	ID       uint          `gorm:"primarykey" json:"id"`
	BuyerID  uint          `gorm:"not null;index" json:"buyer_id"`
	FarmerID *uint         `gorm:"index" json:"farmer_id,omitempty"`
	Crop     string        `gorm:"not null" json:"crop"`
	Quantity int           `gorm:"not null" json:"quantity"`
	Price    *float64      `json:"price,omitempty"`
	Contact  string        `json:"contact,omitempty"`
	Status   RequestStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`

	CancelledBy   *CancelActor `gorm:"type:varchar(10)" json:"cancelled_by,omitempty"`
	DisputeReason string       `gorm:"type:text" json:"dispute_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	BuyerConfirmedAt *time.Time `json:"buyer_confirmed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	DisputedAt       *time.Time `json:"disputed_at,omitempty"`
}

func (ConnectionRequest) TableName() string {
	return "buyer_requests"
}
