package core

// error_messages.go maps technical errors to user-facing messages.
//
// Each message carries a code that users can quote to support:
//
//	TSV001-TSV005   file structure (delimiter, header, rows, empty results)
//	FILE001-FILE006 upload handling (size, encoding, type)
//	VAL001-VAL002   request validation
//	DB001-DB005     database failures
//	UPL001-UPL003   ingestion capacity, cancellation, timeouts
//	AUTH001-AUTH003 authentication and ownership
//	DRV001-DRV005   Google Drive
//	NF001           missing resources
//	RATE001         rate limiting
//	ERR000          anything else

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched case-insensitively with strings.Contains. The
// first match wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// File structure
	{
		pattern: "file appears to be csv",
		msg: UserMessage{
			Message: "File appears to be CSV, not TSV",
			Action:  "Please use tab-separated values.",
			Code:    "TSV001",
		},
	},
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "Missing required columns",
			Action:  "Add questionText and answerText columns to the header row",
			Code:    "TSV002",
		},
	},
	{
		pattern: "tsv parsing error",
		msg: UserMessage{
			Message: "The file could not be parsed",
			Action:  "Ensure your file is properly formatted with tab separators.",
			Code:    "TSV003",
		},
	},
	{
		pattern: "only instructions",
		msg: UserMessage{
			Message: "File contains only instructions, no questions found",
			Action:  "Please add questions with both questionText and answerText.",
			Code:    "TSV004",
		},
	},
	{
		pattern: "no valid questions",
		msg: UserMessage{
			Message: "No valid questions found",
			Action:  "Each question must have both questionText and answerText.",
			Code:    "TSV005",
		},
	},

	// Upload handling
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File too large. Maximum 10MB of text content.",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The uploaded file exceeds the maximum size limit of 16MB",
			Action:  "Please upload a smaller file.",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File encoding error",
			Action:  "Please save your file as UTF-8.",
			Code:    "FILE003",
		},
	},
	{
		pattern: "must be a tsv file",
		msg: UserMessage{
			Message: "File must be a TSV file",
			Action:  "Upload a file with the .tsv extension",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid file type",
		msg: UserMessage{
			Message: "Invalid file type",
			Action:  "File must be a TSV file",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file provided",
			Action:  "Attach a .tsv file in the file field",
			Code:    "FILE006",
		},
	},

	// Request validation
	{
		pattern: "name cannot be empty",
		msg: UserMessage{
			Message: "Name cannot be empty",
			Action:  "Enter a name for the question set",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request is invalid",
			Action:  "Check the request fields and try again",
			Code:    "VAL002",
		},
	},

	// Database
	{
		pattern: "question set already exists",
		msg: UserMessage{
			Message: "This file was imported by another request at the same time",
			Action:  "Refresh your library",
			Code:    "DB001",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This record already exists",
			Action:  "Refresh and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced question or set does not exist",
			Action:  "Refresh and try again",
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
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// Ingestion
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "The server is busy processing other uploads",
			Action:  "Please try again in a few moments",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Try again if this was unexpected",
			Code:    "UPL002",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Consider splitting into smaller files",
			Code:    "UPL003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Consider splitting into smaller files",
			Code:    "UPL003",
		},
	},

	// Authentication and ownership
	{
		pattern: "forbidden",
		msg: UserMessage{
			Message: "Unauthorized",
			Action:  "Only the owner of a question set can change it",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "authentication required",
		msg: UserMessage{
			Message: "Authentication required",
			Action:  "Sign in and try again",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "token",
		msg: UserMessage{
			Message: "Invalid token",
			Action:  "Sign in again",
			Code:    "AUTH003",
		},
	},

	// Google Drive
	{
		pattern: "folder structure too large",
		msg: UserMessage{
			Message: "Folder structure too large",
			Action:  "Please select a smaller folder.",
			Code:    "DRV001",
		},
	},
	{
		pattern: "recursive import is limited",
		msg: UserMessage{
			Message: "Too many files for one recursive import",
			Action:  "Select a folder with fewer files",
			Code:    "DRV002",
		},
	},
	{
		pattern: "drive api key",
		msg: UserMessage{
			Message: "Google Drive integration is not configured",
			Action:  "Contact the administrator",
			Code:    "DRV003",
		},
	},
	{
		pattern: "folder id required",
		msg: UserMessage{
			Message: "Folder ID required",
			Action:  "Select a Google Drive folder",
			Code:    "DRV004",
		},
	},
	{
		pattern: "drive",
		msg: UserMessage{
			Message: "Google Drive request failed",
			Action:  "Check that the file or folder is shared publicly and try again",
			Code:    "DRV005",
		},
	},

	{
		pattern: "not found",
		msg: UserMessage{
			Message: "Question set not found",
			Action:  "Refresh your library",
			Code:    "NF001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches. Support staff should
// check the logs for the technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
