/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Conversation and Message Business Logic Errors
	ErrMissingFields:        {Code: ErrMissingFields, Message: "Missing fields.", Status: http.StatusBadRequest},
	ErrConversationNotFound: {Code: ErrConversationNotFound, Message: "Conversation not found.", Status: http.StatusNotFound},
	ErrSelfConversation:     {Code: ErrSelfConversation, Message: "Cannot start a conversation with yourself.", Status: http.StatusBadRequest},
	ErrNotParticipant:       {Code: ErrNotParticipant, Message: "Sender is not part of this conversation.", Status: http.StatusBadRequest},
	ErrRecipientMismatch:    {Code: ErrRecipientMismatch, Message: "Recipient is not part of this conversation.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:         {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageNotReady: {Code: ErrStorageNotReady, Message: "Service is starting up. Try again shortly.", Status: http.StatusServiceUnavailable},
	ErrStorageFailure:  {Code: ErrStorageFailure, Message: "Database error. Please try again.", Status: http.StatusInternalServerError},
}
