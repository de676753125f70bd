package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player has no live session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when a released or reset session is mutated.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrNotLoggedIn is returned when a player acts before setting a profile.
	ErrNotLoggedIn = errors.New("player is not logged in")
	// ErrInvalidProfile indicates an empty name or an unknown team.
	ErrInvalidProfile = errors.New("invalid player profile")
	// ErrInvalidIndex indicates a question index outside the bank.
	ErrInvalidIndex = errors.New("question index out of range")
	// ErrQuestionLocked is returned when the previous question is still unanswered.
	ErrQuestionLocked = errors.New("question is locked")
	// ErrInvalidAnswer indicates a submission whose shape does not fit the question.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrQuestionNotFound indicates an unknown question ID.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidBank indicates a question definition that breaks the bank invariants.
	ErrInvalidBank = errors.New("invalid question bank")
)
