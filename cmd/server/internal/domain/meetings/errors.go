package meetings

import "errors"

var (
	// ErrNotFound is returned when no record exists for a meeting id.
	ErrNotFound = errors.New("meeting not found")

	// ErrInvalidState is returned when an operation needs a bot handle
	// but the bot was never successfully dispatched.
	ErrInvalidState = errors.New("bot was never dispatched for this meeting")

	// ErrTranscriptTooShort is returned when the stored transcript has
	// too little signal to summarize meaningfully.
	ErrTranscriptTooShort = errors.New("transcript too short to summarize")

	// ErrStatusConflict is returned when a requested status transition
	// would regress the lifecycle.
	ErrStatusConflict = errors.New("status transition not allowed")
)
