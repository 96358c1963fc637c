package model

import (
	"strings"
	"time"
)

// Item is a lost or found object report together with its claims.
type Item struct {
	ID          string         `json:"id"`
	Type        ItemType       `json:"type"`
	Category    Category       `json:"category"`
	Title       string         `json:"title"`
	Location    string         `json:"location"`
	Date        string         `json:"date"`
	Description string         `json:"description"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Status      ItemStatus     `json:"status"`
	OwnerID     string         `json:"ownerId"`
	Claims      []ClaimRequest `json:"claims"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Claim returns the claim with the given id, or nil.
func (it *Item) Claim(id string) *ClaimRequest {
	for i := range it.Claims {
		if it.Claims[i].ID == id {
			return &it.Claims[i]
		}
	}
	return nil
}

// LatestClaimBy returns the most recent claim submitted by the claimant, or nil.
func (it *Item) LatestClaimBy(claimantID string) *ClaimRequest {
	for i := len(it.Claims) - 1; i >= 0; i-- {
		if it.Claims[i].ClaimantID == claimantID {
			return &it.Claims[i]
		}
	}
	return nil
}

// ItemDraft holds the user-supplied fields of a new report.
type ItemDraft struct {
	Type        ItemType `json:"type"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// ItemType tells whether an item was lost or found.
type ItemType string

// Item types.
const (
	ItemTypeLost  ItemType = "LOST"
	ItemTypeFound ItemType = "FOUND"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ItemStatus is a state of the item lifecycle.
type ItemStatus string

// Item statuses.
const (
	ItemStatusPendingApproval ItemStatus = "PENDING_APPROVAL"
	ItemStatusUnclaimed       ItemStatus = "UNCLAIMED"
	ItemStatusClaimRequested  ItemStatus = "CLAIM_REQUESTED"
	ItemStatusReturned        ItemStatus = "RETURNED"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPendingApproval, ItemStatusUnclaimed, ItemStatusClaimRequested, ItemStatusReturned:
		return true
	}
	return false
}

// Category is the closed set of item categories.
type Category string

// Categories.
const (
	CategoryElectronics Category = "Electronics"
	CategoryBooks       Category = "Books & Stationery"
	CategoryClothing    Category = "Clothing & Accessories"
	CategoryKeys        Category = "Keys"
	CategoryCards       Category = "Cards & IDs"
	CategoryOther       Category = "Other"
)

// CategoryAll is the filter sentinel that matches every category.
const CategoryAll Category = "ALL"

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryBooks,
	CategoryClothing,
	CategoryKeys,
	CategoryCards,
	CategoryOther,
}

// Valid reports whether c is one of the closed categories. CategoryAll is not.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the known categories ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}
