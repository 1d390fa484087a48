/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Conversation and Message Business Logic Errors
const (
	// ErrMissingFields indicates that a message post was missing one or more required fields.
	ErrMissingFields = 2001

	// ErrConversationNotFound indicates that the referenced conversation does not exist.
	ErrConversationNotFound = 2002

	// ErrSelfConversation indicates an attempt to resolve a conversation between a user and themselves.
	ErrSelfConversation = 2003

	// ErrNotParticipant indicates that the message sender is not one of the conversation's participants.
	ErrNotParticipant = 2004

	// ErrRecipientMismatch indicates that the supplied recipient is not the conversation's other participant.
	ErrRecipientMismatch = 2005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageNotReady indicates that the storage pool has not been initialized yet.
	ErrStorageNotReady = 5001

	// ErrStorageFailure indicates that a storage read or write failed.
	ErrStorageFailure = 5002
)
