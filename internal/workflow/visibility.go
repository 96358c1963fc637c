package workflow

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/erazemk/lostfound/internal/model"
)

// Visible reports whether viewer may see item. Pending reports are visible
// only to their owner and to moderators.
func Visible(item *model.Item, viewer model.Identity) bool {
	return item.Status != model.ItemStatusPendingApproval ||
		(viewer.ID != "" && viewer.ID == item.OwnerID) ||
		viewer.IsAdmin()
}

// Filter narrows a listing. Empty fields and the ALL sentinel match
// everything.
type Filter struct {
	Category model.Category
	Type     model.ItemType
	Status   model.ItemStatus
	Text     string
}

// ParseFilter builds a Filter from raw query values.
func ParseFilter(category, itemType, status, text string) (Filter, error) {
	var f Filter

	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, string(model.CategoryAll)) {
		c, ok := model.ParseCategory(category)
		if !ok {
			return f, invalid("category", "unknown category %q", category)
		}
		f.Category = c
	}

	itemType = strings.ToUpper(strings.TrimSpace(itemType))
	if itemType != "" && itemType != string(model.CategoryAll) {
		f.Type = model.ItemType(itemType)
		if !f.Type.Valid() {
			return f, invalid("type", "must be LOST, FOUND or ALL")
		}
	}

	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" {
		f.Status = model.ItemStatus(status)
		if !f.Status.Valid() {
			return f, invalid("status", "unknown status %q", status)
		}
	}

	f.Text = strings.TrimSpace(text)
	return f, nil
}

// Apply returns the items visible to viewer that match f, keeping their
// order. Visibility is decided before any other predicate so a pending report
// never shows up for someone who may not see it.
func (f Filter) Apply(items []model.Item, viewer model.Identity) []model.Item {
	fold := cases.Fold()
	needle := fold.String(f.Text)

	out := make([]model.Item, 0, len(items))
	for i := range items {
		item := &items[i]
		if !Visible(item, viewer) {
			continue
		}
		if f.Category != "" && f.Category != model.CategoryAll && item.Category != f.Category {
			continue
		}
		if f.Type != "" && item.Type != f.Type {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(item.Title), needle) &&
			!strings.Contains(fold.String(item.Description), needle) {
			continue
		}
		out = append(out, *item)
	}
	return out
}

// Redact drops the claims viewer may not read. Moderators and the item's
// owner see every claim; anyone else sees only their own.
func Redact(item *model.Item, viewer model.Identity) {
	if viewer.IsAdmin() || (viewer.ID != "" && viewer.ID == item.OwnerID) {
		return
	}

	own := make([]model.ClaimRequest, 0)
	if viewer.ID != "" {
		for _, c := range item.Claims {
			if c.ClaimantID == viewer.ID {
				own = append(own, c)
			}
		}
	}
	item.Claims = own
}
