package service

import "errors"

// Validation errors are rejected synchronously with no state mutated.
// Race-recovery and idempotent no-ops are never surfaced as errors.
var (
	ErrUnknownSource      = errors.New("unknown xp source")
	ErrNotUnlocked        = errors.New("cosmetic image is not unlocked")
	ErrNotEnrolled        = errors.New("student is not enrolled in this classroom")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrClassroomNotFound  = errors.New("classroom not found")
)
