package config

const (
	ErrWriteConfigContentFmt = "Failed to write config content: %v"

	ErrInternalServerError = "Internal server error"
)
