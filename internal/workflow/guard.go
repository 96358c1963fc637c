package workflow

import (
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// Action is a state-changing workflow operation.
type Action int

// Actions.
const (
	ActionSubmit Action = iota + 1
	ActionApprove
	ActionDelete
	ActionSubmitClaim
	ActionApproveClaim
	ActionRejectClaim
	ActionMarkReturned
	ActionAttachImage
)

func (a Action) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionApprove:
		return "approve"
	case ActionDelete:
		return "delete"
	case ActionSubmitClaim:
		return "submit claim"
	case ActionApproveClaim:
		return "approve claim"
	case ActionRejectClaim:
		return "reject claim"
	case ActionMarkReturned:
		return "mark returned"
	case ActionAttachImage:
		return "attach image"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Check decides whether actor may apply a to item and returns the item's
// next status. item is nil for ActionSubmit. claim is the claim under review
// and is only consulted by ActionApproveClaim and ActionRejectClaim. For
// ActionDelete the next status is empty since the item is removed.
//
// Permission is checked before status.
func Check(a Action, actor model.Identity, item *model.Item, claim *model.ClaimRequest) (model.ItemStatus, error) {
	if actor.Anonymous() {
		return "", forbidden(a, "sign in required")
	}

	switch a {
	case ActionSubmit:
		return model.ItemStatusPendingApproval, nil

	case ActionApprove:
		if !actor.IsAdmin() {
			return "", forbidden(a, "moderator role required")
		}
		if item.Status != model.ItemStatusPendingApproval {
			return "", conflict(a, item.Status, "item is not awaiting approval")
		}
		return model.ItemStatusUnclaimed, nil

	case ActionDelete:
		if !ownerOrAdmin(actor, item) {
			return "", forbidden(a, "only the owner or a moderator can delete an item")
		}
		return "", nil

	case ActionSubmitClaim:
		if actor.ID == item.OwnerID {
			return "", forbidden(a, "owners cannot claim their own item")
		}
		if item.Status != model.ItemStatusUnclaimed {
			return "", conflict(a, item.Status, "item is not open for claims")
		}
		return model.ItemStatusClaimRequested, nil

	case ActionApproveClaim, ActionRejectClaim:
		if !actor.IsAdmin() {
			return "", forbidden(a, "moderator role required")
		}
		if claim == nil {
			return "", ErrNotFound
		}
		if item.Status != model.ItemStatusClaimRequested {
			return "", conflict(a, item.Status, "item has no claim under review")
		}
		if claim.Status != model.ClaimStatusPending {
			return "", conflict(a, item.Status, fmt.Sprintf("claim is already %s", claim.Status))
		}
		if a == ActionRejectClaim {
			return model.ItemStatusUnclaimed, nil
		}
		return item.Status, nil

	case ActionMarkReturned:
		if !actor.IsAdmin() {
			return "", forbidden(a, "moderator role required")
		}
		return model.ItemStatusReturned, nil

	case ActionAttachImage:
		if !ownerOrAdmin(actor, item) {
			return "", forbidden(a, "only the owner or a moderator can change the photo")
		}
		return item.Status, nil
	}

	return "", fmt.Errorf("unknown action %v", a)
}

func ownerOrAdmin(actor model.Identity, item *model.Item) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == item.OwnerID)
}
