package model

import "testing"

func TestPurchaseStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PurchaseStatus
		want     bool
	}{
		{PurchaseStatusValidating, PurchaseStatusDeducting, true},
		{PurchaseStatusDeducting, PurchaseStatusDecrementing, true},
		{PurchaseStatusDecrementing, PurchaseStatusInvalidating, true},
		{PurchaseStatusInvalidating, PurchaseStatusDone, true},
		{PurchaseStatusValidating, PurchaseStatusDecrementing, false},
		{PurchaseStatusDeducting, PurchaseStatusValidating, false},
		{PurchaseStatusValidating, PurchaseStatusDone, false},
		{PurchaseStatusValidating, PurchaseStatusFailed, true},
		{PurchaseStatusInvalidating, PurchaseStatusFailed, true},
		{PurchaseStatusDone, PurchaseStatusFailed, false},
		{PurchaseStatusFailed, PurchaseStatusDeducting, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPurchaseStatusIsTerminal(t *testing.T) {
	terminal := map[PurchaseStatus]bool{
		PurchaseStatusValidating:   false,
		PurchaseStatusDeducting:    false,
		PurchaseStatusDecrementing: false,
		PurchaseStatusInvalidating: false,
		PurchaseStatusDone:         true,
		PurchaseStatusFailed:       true,
	}

	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleModerator, RoleAdmin} {
		if !role.IsValid() {
			t.Errorf("role %s must be valid", role)
		}
	}
	if Role("owner").IsValid() {
		t.Error("unknown role must be invalid")
	}
}
