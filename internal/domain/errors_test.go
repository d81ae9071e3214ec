package domain_test

import (
	"errors"
	"testing"

	"github.com/neomorfeo/nettap/internal/domain"
)

func TestNotFoundError_Error(t *testing.T) {
	err := &domain.NotFoundError{Resource: "Lead", ID: "l-1"}
	want := "Lead with identifier 'l-1' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}
}

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{
		Current:   domain.StatusContacted,
		Requested: domain.StatusConverted,
		Allowed:   domain.AllowedTargets(domain.StatusContacted),
	}
	want := `invalid status transition from "contacted" to "converted"; allowed: qualified, assigned_to_isp, rejected, cancelled`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Error("TransitionError should unwrap to ErrValidation")
	}
}

func TestTransitionError_TerminalListsNone(t *testing.T) {
	err := &domain.TransitionError{Current: domain.StatusRejected, Requested: domain.StatusNew}
	want := `invalid status transition from "rejected" to "new"; allowed: none`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAssignmentConflictError(t *testing.T) {
	err := &domain.AssignmentConflictError{LeadID: "l-1", CurrentISPID: "isp-a", RequestedISPID: "isp-b"}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("AssignmentConflictError should unwrap to ErrConflict")
	}
	details := err.ErrorDetails()
	if details["currentIspId"] != "isp-a" || details["newIspId"] != "isp-b" {
		t.Errorf("details = %v", details)
	}
}

func TestErrorCategories(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{&domain.ValidationError{Message: "bad"}, domain.ErrValidation},
		{&domain.VersionConflictError{LeadID: "l"}, domain.ErrConflict},
		{&domain.DuplicateError{Resource: "User", Field: "email", Value: "a@b"}, domain.ErrConflict},
		{&domain.UnauthorizedError{}, domain.ErrUnauthorized},
		{&domain.ForbiddenError{}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.want) {
			t.Errorf("%T does not unwrap to %v", tc.err, tc.want)
		}
	}

	var integrity error = &domain.IntegrityError{Message: "dangling isp"}
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotFound, domain.ErrConflict} {
		if errors.Is(integrity, sentinel) {
			t.Errorf("IntegrityError must not be classified as %v", sentinel)
		}
	}
}
