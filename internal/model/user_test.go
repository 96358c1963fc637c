package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     Role
		minimum  Role
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleStudent, true},
		{RoleStudent, RoleAdmin, false},
		{RoleStudent, RoleStudent, true},
		// Unknown roles fail-closed.
		{"unknown", RoleStudent, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleStudent, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestIdentity(t *testing.T) {
	var anon Identity
	if !anon.Anonymous() {
		t.Error("zero identity should be anonymous")
	}
	if anon.IsAdmin() {
		t.Error("anonymous identity must not be admin")
	}

	// A role without an account grants nothing.
	if (Identity{Role: RoleAdmin}).IsAdmin() {
		t.Error("identity without id must not be admin")
	}

	u := &User{ID: "u1", Email: "a@uni.edu", Role: RoleAdmin}
	if !u.Identity().IsAdmin() {
		t.Error("expected admin identity from admin account")
	}
}
