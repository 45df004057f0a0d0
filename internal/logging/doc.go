// Package logging builds the slog loggers used across turntable and defines
// the standardized field names stamped on pipeline events.
package logging
