package model

import "time"

// ClaimRequest is a request by a user asserting ownership of an item.
type ClaimRequest struct {
	ID            string      `json:"id"`
	ItemID        string      `json:"-"`
	ClaimantID    string      `json:"claimantId"`
	ClaimantEmail string      `json:"claimantEmail"`
	Message       string      `json:"message"`
	Contact       string      `json:"contact"`
	Status        ClaimStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ClaimStatus is the review state of a claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimStatusPending  ClaimStatus = "PENDING"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
)
