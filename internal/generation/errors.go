package generation

import "errors"

// Common errors returned by the generation package and its backends
var (
	// ErrGenerationFailed is returned when a backend call fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate questions from materials")

	// ErrInvalidResponse is returned when a backend returns no usable text
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
