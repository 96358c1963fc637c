// Package workflow owns the item and claim lifecycle. It is the only code
// that mutates items and claims.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/erazemk/lostfound/internal/events"
	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/lock"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// Engine applies workflow actions. Every change to an existing item runs
// under the item's lock, and the store re-checks the expected status when
// writing.
type Engine struct {
	DB     *sql.DB
	Locker lock.Locker
	Events events.Publisher
	Photos imaging.Processor
}

// New creates an Engine with an in-process locker and events written to the
// log. Callers may replace Locker, Events and Photos before first use.
func New(db *sql.DB) *Engine {
	return &Engine{
		DB:     db,
		Locker: lock.NewKeyedMutex(),
		Events: &events.LogPublisher{},
	}
}

// ClaimedItem is an item the viewer has claimed, with the viewer's most
// recent claim on it.
type ClaimedItem struct {
	Item    model.Item         `json:"item"`
	MyClaim model.ClaimRequest `json:"myClaim"`
}

// Submit creates a report owned by actor in PENDING_APPROVAL.
func (e *Engine) Submit(ctx context.Context, actor model.Identity, draft model.ItemDraft) (*model.Item, error) {
	if _, err := Check(ActionSubmit, actor, nil, nil); err != nil {
		return nil, err
	}
	draft, err := ValidateDraft(draft)
	if err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, e.DB, actor.ID, draft)
	if err != nil {
		return nil, err
	}

	slog.Info("item submitted", "item", item.ID, "owner", actor.ID, "type", item.Type)
	e.emit(ctx, events.ItemSubmitted, item, actor, "")
	return item, nil
}

// Get returns one item as viewer may see it.
func (e *Engine) Get(ctx context.Context, viewer model.Identity, id string) (*model.Item, error) {
	item, err := e.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	Redact(item, viewer)
	return item, nil
}

// List returns the items visible to viewer that match f, newest first.
func (e *Engine) List(ctx context.Context, viewer model.Identity, f Filter) ([]model.Item, error) {
	items, err := store.ListItems(ctx, e.DB)
	if err != nil {
		return nil, err
	}
	items = f.Apply(items, viewer)
	for i := range items {
		Redact(&items[i], viewer)
	}
	return items, nil
}

// MyReports returns every item viewer reported, pending ones included.
func (e *Engine) MyReports(ctx context.Context, viewer model.Identity) ([]model.Item, error) {
	if viewer.Anonymous() {
		return []model.Item{}, nil
	}
	items, err := store.ListItemsByOwner(ctx, e.DB, viewer.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// MyClaims returns the items viewer has claimed. The status that matters to
// the viewer is MyClaim.Status, not the item's.
func (e *Engine) MyClaims(ctx context.Context, viewer model.Identity) ([]ClaimedItem, error) {
	if viewer.Anonymous() {
		return []ClaimedItem{}, nil
	}
	items, err := store.ListItemsClaimedBy(ctx, e.DB, viewer.ID)
	if err != nil {
		return nil, err
	}

	out := make([]ClaimedItem, 0, len(items))
	for i := range items {
		mine := items[i].LatestClaimBy(viewer.ID)
		if mine == nil {
			continue
		}
		claim := *mine
		Redact(&items[i], viewer)
		out = append(out, ClaimedItem{Item: items[i], MyClaim: claim})
	}
	return out, nil
}

// Approve publishes a pending report.
func (e *Engine) Approve(ctx context.Context, actor model.Identity, id string) (*model.Item, error) {
	item, err := e.transition(ctx, ActionApprove, actor, id, func(item *model.Item) error {
		next, err := Check(ActionApprove, actor, item, nil)
		if err != nil {
			return err
		}
		return store.SetItemStatus(ctx, e.DB, id, item.Status, next)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item approved", "item", id, "actor", actor.ID)
	e.emit(ctx, events.ItemApproved, item, actor, "")
	return item, nil
}

// Delete removes an item and its claims.
func (e *Engine) Delete(ctx context.Context, actor model.Identity, id string) error {
	var deleted *model.Item
	_, err := e.locked(ctx, ActionDelete, actor, id, func(item *model.Item) error {
		if _, err := Check(ActionDelete, actor, item, nil); err != nil {
			return err
		}
		if err := store.DeleteItem(ctx, e.DB, id); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("item deleted", "item", id, "actor", actor.ID, "claims", len(deleted.Claims))
	e.emit(ctx, events.ItemDeleted, deleted, actor, "")
	return nil
}

// SubmitClaim records actor's claim on an unclaimed item.
func (e *Engine) SubmitClaim(ctx context.Context, actor model.Identity, id string, in ClaimInput) (*model.Item, error) {
	if actor.Anonymous() {
		return nil, forbidden(ActionSubmitClaim, "sign in required")
	}
	in, err := ValidateClaim(in)
	if err != nil {
		return nil, err
	}

	var claim *model.ClaimRequest
	item, err := e.transition(ctx, ActionSubmitClaim, actor, id, func(item *model.Item) error {
		next, err := Check(ActionSubmitClaim, actor, item, nil)
		if err != nil {
			return err
		}
		claim, err = store.AddClaim(ctx, e.DB, id, model.ClaimRequest{
			ClaimantID:    actor.ID,
			ClaimantEmail: actor.Email,
			Message:       in.Message,
			Contact:       in.Contact,
		}, item.Status, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim submitted", "item", id, "claim", claim.ID, "claimant", actor.ID)
	e.emit(ctx, events.ClaimSubmitted, item, actor, claim.ID)
	Redact(item, actor)
	return item, nil
}

// ApproveClaim accepts a pending claim. The item stays in CLAIM_REQUESTED
// until a moderator marks it returned.
func (e *Engine) ApproveClaim(ctx context.Context, actor model.Identity, id, claimID string) (*model.Item, error) {
	return e.resolveClaim(ctx, ActionApproveClaim, actor, id, claimID, model.ClaimStatusApproved, events.ClaimApproved)
}

// RejectClaim declines a pending claim and reopens the item for claims.
func (e *Engine) RejectClaim(ctx context.Context, actor model.Identity, id, claimID string) (*model.Item, error) {
	return e.resolveClaim(ctx, ActionRejectClaim, actor, id, claimID, model.ClaimStatusRejected, events.ClaimRejected)
}

func (e *Engine) resolveClaim(ctx context.Context, a Action, actor model.Identity, id, claimID string, status model.ClaimStatus, eventType string) (*model.Item, error) {
	item, err := e.transition(ctx, a, actor, id, func(item *model.Item) error {
		next, err := Check(a, actor, item, item.Claim(claimID))
		if err != nil {
			return err
		}
		return store.ResolveClaim(ctx, e.DB, id, claimID, status, item.Status, next)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim resolved", "item", id, "claim", claimID, "status", status, "actor", actor.ID)
	e.emit(ctx, eventType, item, actor, claimID)
	return item, nil
}

// MarkReturned closes an item from any status. A formally approved claim is
// not required.
func (e *Engine) MarkReturned(ctx context.Context, actor model.Identity, id string) (*model.Item, error) {
	item, err := e.transition(ctx, ActionMarkReturned, actor, id, func(item *model.Item) error {
		next, err := Check(ActionMarkReturned, actor, item, nil)
		if err != nil {
			return err
		}
		return store.SetItemStatus(ctx, e.DB, id, item.Status, next)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item returned", "item", id, "actor", actor.ID)
	e.emit(ctx, events.ItemReturned, item, actor, "")
	return item, nil
}

// AttachImage processes an uploaded photo and stores it on the item. The
// photo is processed before the item is locked.
func (e *Engine) AttachImage(ctx context.Context, actor model.Identity, id string, r io.Reader) (*model.Item, error) {
	current, err := e.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if _, err := Check(ActionAttachImage, actor, current, nil); err != nil {
		return nil, err
	}

	photo, err := e.Photos.Process(r)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
			return nil, invalid("image", "%v", err)
		}
		return nil, err
	}

	item, err := e.transition(ctx, ActionAttachImage, actor, id, func(item *model.Item) error {
		if _, err := Check(ActionAttachImage, actor, item, nil); err != nil {
			return err
		}
		return store.SetItemImage(ctx, e.DB, id, photo.Data, photo.MIME, ImagePath(id))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item photo attached", "item", id, "actor", actor.ID, "bytes", len(photo.Data))
	e.emit(ctx, events.ItemImageAttached, item, actor, "")
	return item, nil
}

// Image returns an item's stored photo if viewer may see the item.
func (e *Engine) Image(ctx context.Context, viewer model.Identity, id string) ([]byte, string, error) {
	if _, err := e.load(ctx, viewer, id); err != nil {
		return nil, "", err
	}
	data, mime, err := store.GetItemImage(ctx, e.DB, id)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", ErrNotFound
	}
	return data, mime, nil
}

// ImagePath is the URL path an item's stored photo is served from.
func ImagePath(id string) string {
	return ImagePathPrefix + id + "/image"
}

// load reads an item viewer may see. Hidden items read as missing.
func (e *Engine) load(ctx context.Context, viewer model.Identity, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil || !Visible(item, viewer) {
		return nil, ErrNotFound
	}
	return item, nil
}

// transition runs fn under the item's lock and returns the item as actor
// sees it afterwards.
func (e *Engine) transition(ctx context.Context, a Action, actor model.Identity, id string, fn func(item *model.Item) error) (*model.Item, error) {
	if _, err := e.locked(ctx, a, actor, id, fn); err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	Redact(item, actor)
	return item, nil
}

// locked loads the item under its lock and applies fn. A write that lost a
// race with another instance surfaces as a status GuardViolation.
func (e *Engine) locked(ctx context.Context, a Action, actor model.Identity, id string, fn func(item *model.Item) error) (*model.Item, error) {
	unlock, err := e.Locker.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("locking item %s: %w", id, err)
	}
	defer unlock()

	item, err := e.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	err = fn(item)
	if errors.Is(err, store.ErrStale) {
		current, getErr := store.GetItem(ctx, e.DB, id)
		if getErr != nil {
			return nil, getErr
		}
		if current == nil {
			return nil, ErrNotFound
		}
		return nil, conflict(a, current.Status, "item changed while the action was applied")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (e *Engine) emit(ctx context.Context, typ string, item *model.Item, actor model.Identity, claimID string) {
	ev := events.New(typ, item.ID, actor, item.Status)
	if typ == events.ItemDeleted {
		ev.Status = ""
	}
	ev.ClaimID = claimID
	events.Emit(ctx, e.Events, ev)
}
