package model

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Electronics", CategoryElectronics, true},
		{"  keys ", CategoryKeys, true},
		{"cards & ids", CategoryCards, true},
		{"BOOKS & STATIONERY", CategoryBooks, true},
		{"ALL", "", false},
		{"Furniture", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCategory(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if CategoryAll.Valid() {
		t.Error("ALL is a filter sentinel, not a category")
	}
}

func TestLatestClaimBy(t *testing.T) {
	item := &Item{Claims: []ClaimRequest{
		{ID: "c1", ClaimantID: "b", Status: ClaimStatusRejected},
		{ID: "c2", ClaimantID: "c", Status: ClaimStatusRejected},
		{ID: "c3", ClaimantID: "b", Status: ClaimStatusPending},
	}}

	got := item.LatestClaimBy("b")
	if got == nil || got.ID != "c3" {
		t.Fatalf("expected claim c3, got %+v", got)
	}
	if item.LatestClaimBy("z") != nil {
		t.Error("expected nil for claimant without claims")
	}
	if item.Claim("c2") == nil || item.Claim("missing") != nil {
		t.Error("Claim lookup by id is wrong")
	}
}
