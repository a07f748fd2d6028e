package types

import (
	"fmt"
	"strings"
	"time"
)

type ListingStatus string

const (
	ListingStatusActive        ListingStatus = "ACTIVE"
	ListingStatusUnderContract ListingStatus = "UNDER_CONTRACT"
	ListingStatusClosed        ListingStatus = "CLOSED"
)

// ParseListingStatus normalizes a status value from a request.
func ParseListingStatus(v string) (ListingStatus, error) {
	switch ListingStatus(strings.ToUpper(strings.TrimSpace(v))) {
	case ListingStatusActive:
		return ListingStatusActive, nil
	case ListingStatusUnderContract:
		return ListingStatusUnderContract, nil
	case ListingStatusClosed:
		return ListingStatusClosed, nil
	}
	return "", fmt.Errorf("unknown listing status %q", v)
}

// CanTransition reports whether a listing may move to the given status.
// Active deals go under contract, deals under contract close or fall
// through back to active. Closed is terminal.
func (s ListingStatus) CanTransition(to ListingStatus) bool {
	switch s {
	case ListingStatusActive:
		return to == ListingStatusUnderContract
	case ListingStatusUnderContract:
		return to == ListingStatusActive || to == ListingStatusClosed
	}
	return false
}

type Listing struct {
	ID               string        `db:"id" json:"id"`
	SellerID         string        `db:"seller_id" json:"sellerId"`
	BrokerID         *string       `db:"broker_id" json:"brokerId,omitempty"`
	AgentID          *string       `db:"agent_id" json:"agentId,omitempty"`
	Title            string        `db:"title" json:"title"`
	Description      *string       `db:"description" json:"description,omitempty"`
	AskingPriceCents int64         `db:"asking_price_cents" json:"askingPriceCents"`
	Status           ListingStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updatedAt"`
}

// ListingBuyer associates an interested buyer with a listing.
type ListingBuyer struct {
	ListingID string    `db:"listing_id" json:"listingId"`
	BuyerID   string    `db:"buyer_id" json:"buyerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AccessibleTo reports whether a user may operate on the listing: sellers own
// it, brokers/agents are assigned to it, buyers are checked against the
// listing_buyers association separately.
func (l *Listing) AccessibleTo(role Role, userID string) bool {
	switch role {
	case RoleSeller:
		return l.SellerID == userID
	case RoleBroker:
		return l.BrokerID != nil && *l.BrokerID == userID
	case RoleAgent:
		return l.AgentID != nil && *l.AgentID == userID
	}
	return false
}
