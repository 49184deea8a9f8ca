package core

// error_messages.go maps errors to user-facing messages with support codes.
//
// Errors raised by this package are matched by identity (errors.Is/As).
// Errors coming from the database driver are matched by pattern against
// their text, case-insensitively, first match wins.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Source missing: the stories CSV is not at the configured path
//	IMP002 - Import running: another import holds the gate
//	IMP003 - Mapping not written: stories exist but story_node_mapping.csv failed
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Title missing: a row has no title
//	ROW002 - Unsupported language: field_language has no schema
//
// # Story Errors (STY001-STY099)
//
//	STY001 - Story not found
//	STY002 - Story name required
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key        Patterns: "duplicate key", "violates unique"
//	DB002 - Foreign key          Patterns: "violates foreign key"
//	DB003 - Connection refused   Patterns: "connection refused"
//	DB004 - Connection reset     Patterns: "connection reset"
//	DB005 - Timeout              Patterns: "timeout", "context deadline exceeded"
//	DB006 - Deadlock             Patterns: "deadlock"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original
// technical error when users report ERR000.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgSourceMissing = UserMessage{
		Message: "The stories CSV was not found",
		Action:  "Place the export at the configured import path and retry",
		Code:    "IMP001",
	}
	msgImportRunning = UserMessage{
		Message: "An import is already running",
		Action:  "Wait for the running import to finish",
		Code:    "IMP002",
	}
	msgMappingNotWritten = UserMessage{
		Message: "Stories were created but the node mapping file could not be written",
		Action:  "Check IMPORT_MAPPING_PATH is writable; rerunning skips the stories already created",
		Code:    "IMP003",
	}
	msgTitleMissing = UserMessage{
		Message: "Title is missing",
		Action:  "Fill the title column for every row",
		Code:    "ROW001",
	}
	msgUnsupportedLanguage = UserMessage{
		Message: "Unsupported language",
		Action:  "Use English, Kannada, Marathi or Urdu in field_language",
		Code:    "ROW002",
	}
	msgStoryNotFound = UserMessage{
		Message: "Story not found",
		Action:  "Check the story name; it must be the name returned by the import",
		Code:    "STY001",
	}
	msgStoryNameRequired = UserMessage{
		Message: "story_name is required",
		Action:  "Send the name of the story to update",
		Code:    "STY002",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps driver error text to user messages.
// Order matters: more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A story with this title already exists",
			Action:  "Run the import again; existing stories are skipped",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A story with this title already exists",
			Action:  "Run the import again; existing stories are skipped",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Migrate themes and tags before stories",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Check database load and retry the import",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Check database load and retry the import",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var unsupported *UnsupportedLanguageError
	switch {
	case errors.Is(err, ErrSourceMissing):
		return msgSourceMissing
	case errors.Is(err, ErrImportInProgress):
		return msgImportRunning
	case errors.Is(err, ErrMappingNotWritten):
		return msgMappingNotWritten
	case errors.Is(err, ErrTitleMissing):
		return msgTitleMissing
	case errors.As(err, &unsupported):
		msg := msgUnsupportedLanguage
		msg.Message = fmt.Sprintf("%s: %q", msg.Message, unsupported.Language)
		return msg
	case errors.Is(err, ErrNotFound):
		return msgStoryNotFound
	case errors.Is(err, ErrStoryNameRequired):
		return msgStoryNameRequired
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
