package service

import "errors"

// Business rule errors mapped to HTTP statuses by the handlers
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAlreadyJoined      = errors.New("already joined this ride")
	ErrOrganizerCantLeave = errors.New("organizer cannot leave their own ride")
	ErrRideInactive       = errors.New("ride is not active")
)
