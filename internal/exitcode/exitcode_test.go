package exitcode

import (
	stderrors "errors"
	"testing"

	"github.com/Caspar241/releasehub/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"template not found", errors.NewTemplateNotFoundError("x"), NotFound},
		{"anchor not found", errors.NewAnchorNotFoundError("x"), NotFound},
		{"instance not found", errors.NewInstanceNotFoundError("x"), NotFound},
		{"missing anchor date", errors.NewMissingAnchorDateError("t", "a"), ValidationError},
		{"invalid offset", errors.NewInvalidOffsetError("t", "x"), ValidationError},
		{"invalid snooze", errors.NewInvalidSnoozeDurationError(3, []int{2, 24, 168}), ValidationError},
		{"state transition", errors.NewInvalidStateTransitionError("i", "completed", "snooze"), Conflict},
		{"version conflict", errors.NewConcurrentModificationError("i", 1, 2), Conflict},
		{"store unavailable", errors.New(errors.ErrCodeStoreUnavailable, "down"), StoreError},
		{"wrapped", errors.Wrap(errors.ErrCodeFileReadFailed, "read", errors.NewTemplateNotFoundError("x")), NotFound},
		{"plain error", stderrors.New("boom"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	for code := Success; code <= StoreError; code++ {
		if Description(code) == "Unknown error" {
			t.Errorf("Missing description for code %d", code)
		}
	}
	if Description(99) != "Unknown error" {
		t.Error("Expected unknown description for unmapped code")
	}
}
