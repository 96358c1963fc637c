package workflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

func TestVisibleProperty(t *testing.T) {
	viewers := []model.Identity{studentA, studentB, admin, nobody,
		{ID: "mod-without-role", Role: ""},
		{ID: "", Role: model.RoleAdmin},
	}
	statuses := []model.ItemStatus{
		model.ItemStatusPendingApproval, model.ItemStatusUnclaimed,
		model.ItemStatusClaimRequested, model.ItemStatusReturned,
	}

	for _, status := range statuses {
		item := &model.Item{OwnerID: studentA.ID, Status: status}
		for _, v := range viewers {
			want := status != model.ItemStatusPendingApproval || v.ID == studentA.ID || (v.ID != "" && v.Role == model.RoleAdmin)
			assert.Equal(t, want, Visible(item, v), "status %s viewer %+v", status, v)
		}
	}

	// An ownerless item is not visible to an anonymous viewer by id match.
	assert.False(t, Visible(&model.Item{Status: model.ItemStatusPendingApproval}, nobody))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("ALL", "all", "", "  Library ")
	require.NoError(t, err)
	if diff := cmp.Diff(Filter{Text: "Library"}, f); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}

	f, err = ParseFilter("books & stationery", "lost", "returned", "")
	require.NoError(t, err)
	want := Filter{Category: model.CategoryBooks, Type: model.ItemTypeLost, Status: model.ItemStatusReturned}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range [][4]string{
		{"Furniture", "", "", ""},
		{"", "STOLEN", "", ""},
		{"", "", "DELETED", ""},
	} {
		_, err := ParseFilter(bad[0], bad[1], bad[2], bad[3])
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "%v", bad)
	}
}

func TestFilterApplyFoldsCase(t *testing.T) {
	items := []model.Item{
		{ID: "1", Status: model.ItemStatusUnclaimed, Category: model.CategoryClothing, Type: model.ItemTypeLost,
			Title: "ΤΣΑΝΤΑ scarf", Description: "wool"},
		{ID: "2", Status: model.ItemStatusUnclaimed, Category: model.CategoryClothing, Type: model.ItemTypeFound,
			Title: "Jacket", Description: "Found next to a τσαντα"},
		{ID: "3", Status: model.ItemStatusReturned, Category: model.CategoryKeys, Type: model.ItemTypeFound,
			Title: "Keys", Description: "none"},
	}

	got := Filter{Text: "Τσαντα"}.Apply(items, nobody)
	assert.Equal(t, []string{"1", "2"}, ids(got))

	got = Filter{Type: model.ItemTypeFound}.Apply(items, nobody)
	assert.Equal(t, []string{"2", "3"}, ids(got))

	got = Filter{Status: model.ItemStatusReturned}.Apply(items, nobody)
	assert.Equal(t, []string{"3"}, ids(got))

	got = Filter{Category: model.CategoryAll}.Apply(items, nobody)
	assert.Len(t, got, 3)
}

func TestRedactDoesNotTouchOwnerView(t *testing.T) {
	item := &model.Item{OwnerID: studentA.ID, Claims: []model.ClaimRequest{
		{ID: "1", ClaimantID: studentB.ID},
		{ID: "2", ClaimantID: studentC.ID},
	}}

	Redact(item, studentA)
	assert.Len(t, item.Claims, 2)

	Redact(item, studentB)
	assert.Equal(t, "1", item.Claims[0].ID)
	assert.Len(t, item.Claims, 1)
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
