package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrValidation              = errors.New("validation error")
	ErrConflict                = errors.New("conflict")
	ErrPermission              = errors.New("permission denied")
	ErrNotFound                = errors.New("not found")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrNotEligible             = errors.New("debate cannot end yet")
	ErrInternalServer          = errors.New("internal server error")
)

// Specific errors, each wrapping its kind.
var (
	ErrRoomNotFound          = fmt.Errorf("%w: room not found", ErrNotFound)
	ErrMessageNotFound       = fmt.Errorf("%w: message not found", ErrNotFound)
	ErrResultNotFound        = fmt.Errorf("%w: debate has no result yet", ErrNotFound)
	ErrStanceRequired        = fmt.Errorf("%w: select a stance first", ErrValidation)
	ErrInvalidTeam           = fmt.Errorf("%w: team must be favor, against or neutral", ErrValidation)
	ErrInvalidSettings       = fmt.Errorf("%w: invalid settings", ErrValidation)
	ErrEmptyMessage          = fmt.Errorf("%w: message needs text or an image", ErrValidation)
	ErrMessageTooLarge       = fmt.Errorf("%w: message exceeds size limit", ErrValidation)
	ErrTeamMismatch          = fmt.Errorf("%w: team does not match the registered stance", ErrValidation)
	ErrRequesterRequired     = fmt.Errorf("%w: requester id is required", ErrValidation)
	ErrStanceAlreadySelected = fmt.Errorf("%w: stance already selected", ErrConflict)
	ErrAlreadyDeleted        = fmt.Errorf("%w: message already deleted", ErrConflict)
	ErrDebateEnded           = fmt.Errorf("%w: debate already ended", ErrConflict)
	ErrAlreadyEvaluated      = fmt.Errorf("%w: message already evaluated", ErrConflict)
	ErrNotMessageOwner       = fmt.Errorf("%w: only the sender can delete this message", ErrPermission)
	ErrNotModerator          = fmt.Errorf("%w: moderator rights required", ErrPermission)
	ErrNotRoomCreator        = fmt.Errorf("%w: only the room creator can change settings", ErrPermission)
	ErrDetectorUnavailable   = fmt.Errorf("%w: ai detector failed, retry later", ErrCollaboratorUnavailable)
	ErrScorerUnavailable     = fmt.Errorf("%w: scoring service failed, retry later", ErrCollaboratorUnavailable)
)

// Kind names the taxonomy class of err for wire responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCollaboratorUnavailable):
		return "collaborator_unavailable"
	case errors.Is(err, ErrNotEligible):
		return "not_eligible"
	default:
		return "internal"
	}
}
