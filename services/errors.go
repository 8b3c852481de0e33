package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed          = errors.New("validation failed")
	ErrPasswordTooShort          = errors.New("password is too short")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrParticipantNameRequired   = errors.New("participant name is required")
	ErrStageNameRequired         = errors.New("stage name is required")
	ErrNotEnoughParticipants     = errors.New("not enough participants to build a stage")
	ErrStageNotSwiss             = errors.New("stage is not a swiss stage")
	ErrLogoContentTypeNotAllowed = errors.New("logo content type is not allowed")

	// Conflicts.
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRegistrationConflict   = errors.New("participant is already registered for this tournament")
	ErrStageConflict          = errors.New("stage was modified concurrently, retry the operation")

	// Authentication and authorization.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found variants, kept separate for context.
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrStageNotFound       = errors.New("stage not found")
	ErrMatchNotFound       = errors.New("match not found")
)
