package util

import "errors"

var (
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidStartDate    = errors.New("invalid start date")
	ErrAnswerCountMismatch = errors.New("answer count does not match quiz item count")
	ErrPlanNotFound        = errors.New("no plans found")
	ErrDayNotFound         = errors.New("no schedule for that date")
	ErrTaskNotFound        = errors.New("task not found")
	ErrSessionNotFound     = errors.New("quiz session not found")
	ErrNoJSONObject        = errors.New("no parseable JSON object in text")
)
