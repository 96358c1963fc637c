package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func claimFrom(claimant string) model.ClaimRequest {
	return model.ClaimRequest{
		ClaimantID:    claimant,
		ClaimantEmail: claimant + "@uni.edu",
		Message:       "it has a rocket sticker on the lid and a dent on the corner",
		Contact:       claimant + "@uni.edu",
	}
}


func TestAddClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "a", testDraft("MacBook Air"))
	SetItemStatus(ctx, database, item.ID, model.ItemStatusPendingApproval, model.ItemStatusUnclaimed)

	claim, err := AddClaim(ctx, database, item.ID, claimFrom("b"), model.ItemStatusUnclaimed, model.ItemStatusClaimRequested)
	if err != nil {
		t.Fatalf("AddClaim: %v", err)
	}
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected PENDING claim, got %q", claim.Status)
	}
	if claim.ItemID != item.ID {
		t.Errorf("expected claim to target item, got %q", claim.ItemID)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusClaimRequested {
		t.Errorf("expected CLAIM_REQUESTED, got %q", got.Status)
	}
	if len(got.Claims) != 1 || got.Claims[0].ClaimantID != "b" {
		t.Errorf("expected one claim by b, got %+v", got.Claims)
	}
}

func TestAddClaimStaleStoresNothing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "a", testDraft("Pending"))

	_, err := AddClaim(ctx, database, item.ID, claimFrom("b"), model.ItemStatusUnclaimed, model.ItemStatusClaimRequested)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if len(got.Claims) != 0 {
		t.Errorf("expected no claims after stale write, got %d", len(got.Claims))
	}
	if got.Status != model.ItemStatusPendingApproval {
		t.Errorf("expected status unchanged, got %q", got.Status)
	}
}

func TestResolveClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "a", testDraft("Umbrella"))
	SetItemStatus(ctx, database, item.ID, model.ItemStatusPendingApproval, model.ItemStatusUnclaimed)
	claim, _ := AddClaim(ctx, database, item.ID, claimFrom("b"), model.ItemStatusUnclaimed, model.ItemStatusClaimRequested)

	err := ResolveClaim(ctx, database, item.ID, claim.ID, model.ClaimStatusRejected,
		model.ItemStatusClaimRequested, model.ItemStatusUnclaimed)
	if err != nil {
		t.Fatalf("ResolveClaim: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusUnclaimed {
		t.Errorf("expected UNCLAIMED after rejection, got %q", got.Status)
	}
	if got.Claims[0].Status != model.ClaimStatusRejected {
		t.Errorf("expected REJECTED claim, got %q", got.Claims[0].Status)
	}

	// The claim is no longer pending.
	err = ResolveClaim(ctx, database, item.ID, claim.ID, model.ClaimStatusApproved,
		model.ItemStatusUnclaimed, model.ItemStatusUnclaimed)
	if !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale resolving twice, got %v", err)
	}
}

func TestListItemsClaimedBy(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	claimed, _ := CreateItem(ctx, database, "a", testDraft("Claimed"))
	CreateItem(ctx, database, "a", testDraft("Untouched"))
	SetItemStatus(ctx, database, claimed.ID, model.ItemStatusPendingApproval, model.ItemStatusUnclaimed)
	AddClaim(ctx, database, claimed.ID, claimFrom("b"), model.ItemStatusUnclaimed, model.ItemStatusClaimRequested)

	items, err := ListItemsClaimedBy(ctx, database, "b")
	if err != nil {
		t.Fatalf("ListItemsClaimedBy: %v", err)
	}
	if len(items) != 1 || items[0].ID != claimed.ID {
		t.Fatalf("expected only the claimed item, got %+v", items)
	}
	if len(items[0].Claims) != 1 {
		t.Errorf("expected claims to be loaded, got %d", len(items[0].Claims))
	}

	none, _ := ListItemsClaimedBy(ctx, database, "c")
	if len(none) != 0 {
		t.Errorf("expected no items for c, got %d", len(none))
	}
}
