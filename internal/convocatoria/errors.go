package convocatoria

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyEvaluated   = errors.New("applicant already has a technical evaluation")
	ErrNotEvaluated       = errors.New("applicant has no technical evaluation")
	ErrInvalidObservation = errors.New("invalid observation")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPostingInactive    = errors.New("posting is inactive")
)
