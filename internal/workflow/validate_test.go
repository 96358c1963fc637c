package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *model.ItemDraft)
		field  string
	}{
		{"valid", func(d *model.ItemDraft) {}, ""},
		{"lower-case type", func(d *model.ItemDraft) { d.Type = "lost" }, ""},
		{"category any case", func(d *model.ItemDraft) { d.Category = "cards & ids" }, ""},
		{"https image", func(d *model.ItemDraft) { d.ImageURL = "https://cdn.example.edu/a.jpg" }, ""},
		{"unknown type", func(d *model.ItemDraft) { d.Type = "STOLEN" }, "type"},
		{"missing category", func(d *model.ItemDraft) { d.Category = "" }, "category"},
		{"unknown category", func(d *model.ItemDraft) { d.Category = "Furniture" }, "category"},
		{"ALL is not a category", func(d *model.ItemDraft) { d.Category = model.CategoryAll }, "category"},
		{"blank title", func(d *model.ItemDraft) { d.Title = " \t" }, "title"},
		{"long title", func(d *model.ItemDraft) { d.Title = strings.Repeat("x", MaxTitleLength+1) }, "title"},
		{"missing location", func(d *model.ItemDraft) { d.Location = "" }, "location"},
		{"missing date", func(d *model.ItemDraft) { d.Date = "" }, "date"},
		{"bad date", func(d *model.ItemDraft) { d.Date = "15/05/2024" }, "date"},
		{"impossible date", func(d *model.ItemDraft) { d.Date = "2024-02-30" }, "date"},
		{"missing description", func(d *model.ItemDraft) { d.Description = "" }, "description"},
		{"relative image", func(d *model.ItemDraft) { d.ImageURL = "photo.jpg" }, "imageUrl"},
		{"ftp image", func(d *model.ItemDraft) { d.ImageURL = "ftp://example.edu/a.jpg" }, "imageUrl"},
		{"server photo path", func(d *model.ItemDraft) { d.ImageURL = "/api/items/x/image" }, "imageUrl"},
		{"server path traversal", func(d *model.ItemDraft) { d.ImageURL = "/api/items/../x" }, "imageUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := macbook()
			tt.modify(&d)

			got, err := ValidateDraft(d)
			if tt.field == "" {
				require.NoError(t, err)
				assert.True(t, got.Type.Valid())
				assert.True(t, got.Category.Valid())
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateDraftTrims(t *testing.T) {
	d := macbook()
	d.Title = "  MacBook Air "
	d.Category = " electronics"

	got, err := ValidateDraft(d)
	require.NoError(t, err)
	assert.Equal(t, "MacBook Air", got.Title)
	assert.Equal(t, model.CategoryElectronics, got.Category)
}

func TestValidateClaim(t *testing.T) {
	tests := []struct {
		name  string
		in    ClaimInput
		field string
	}{
		{"valid", ClaimInput{Message: claimMessage, Contact: "b@uni.edu"}, ""},
		{"exactly minimum", ClaimInput{Message: strings.Repeat("a", MinClaimMessageLength), Contact: "x"}, ""},
		{"multibyte counts runes", ClaimInput{Message: strings.Repeat("ž", MinClaimMessageLength), Contact: "x"}, ""},
		{"short", ClaimInput{Message: "mine", Contact: "x"}, "message"},
		{"padding does not count", ClaimInput{Message: "   short message   " + strings.Repeat(" ", 20), Contact: "x"}, "message"},
		{"missing contact", ClaimInput{Message: claimMessage, Contact: "  "}, "contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateClaim(tt.in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
