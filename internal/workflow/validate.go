package workflow

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erazemk/lostfound/internal/model"
)

// Input limits.
const (
	MinClaimMessageLength = 20
	MaxTitleLength        = 120
	MaxLocationLength     = 200
	MaxDescriptionLength  = 2000
	MaxClaimMessageLength = 2000
	MaxContactLength      = 200
)

// DateLayout is the format of an item's date.
const DateLayout = "2006-01-02"

// ImagePathPrefix prefixes photo URLs served by this server. Only AttachImage
// sets such a URL; drafts may not.
const ImagePathPrefix = "/api/items/"

// ValidateDraft trims and checks the fields of a new report and returns the
// normalized draft.
func ValidateDraft(d model.ItemDraft) (model.ItemDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Location = strings.TrimSpace(d.Location)
	d.Date = strings.TrimSpace(d.Date)
	d.Description = strings.TrimSpace(d.Description)
	d.ImageURL = strings.TrimSpace(d.ImageURL)

	d.Type = model.ItemType(strings.ToUpper(strings.TrimSpace(string(d.Type))))
	if !d.Type.Valid() {
		return d, invalid("type", "must be LOST or FOUND")
	}

	if strings.TrimSpace(string(d.Category)) == "" {
		return d, invalid("category", "required")
	}
	cat, ok := model.ParseCategory(string(d.Category))
	if !ok {
		return d, invalid("category", "unknown category %q", d.Category)
	}
	d.Category = cat

	if err := requireText("title", d.Title, MaxTitleLength); err != nil {
		return d, err
	}
	if err := requireText("location", d.Location, MaxLocationLength); err != nil {
		return d, err
	}

	if d.Date == "" {
		return d, invalid("date", "required")
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return d, invalid("date", "must be a calendar date (YYYY-MM-DD)")
	}

	if err := requireText("description", d.Description, MaxDescriptionLength); err != nil {
		return d, err
	}

	if d.ImageURL != "" && !validImageURL(d.ImageURL) {
		return d, invalid("imageUrl", "must be an absolute http(s) URL")
	}

	return d, nil
}

// ClaimInput is what a claimant supplies with a claim.
type ClaimInput struct {
	Message string `json:"message"`
	Contact string `json:"contact"`
}

// ValidateClaim trims and checks a claim.
func ValidateClaim(in ClaimInput) (ClaimInput, error) {
	in.Message = strings.TrimSpace(in.Message)
	in.Contact = strings.TrimSpace(in.Contact)

	n := utf8.RuneCountInString(in.Message)
	if n < MinClaimMessageLength {
		return in, invalid("message", "must be at least %d characters", MinClaimMessageLength)
	}
	if n > MaxClaimMessageLength {
		return in, invalid("message", "must be at most %d characters", MaxClaimMessageLength)
	}
	if err := requireText("contact", in.Contact, MaxContactLength); err != nil {
		return in, err
	}
	return in, nil
}

func requireText(field, value string, maxLen int) error {
	if value == "" {
		return invalid(field, "required")
	}
	if utf8.RuneCountInString(value) > maxLen {
		return invalid(field, "must be at most %d characters", maxLen)
	}
	return nil
}

func validImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
