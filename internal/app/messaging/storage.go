/*
Package messaging contains the conversation-resolution and message fan-out core.

The Resolver maps an unordered pair of user identities to exactly one durable
conversation, creating it lazily and absorbing creation races. The Service
persists messages and pushes them to every live session of both participants.
*/
package messaging

import (
	"context"

	"pairchat/internal/app/store"
)

// Storage is the persistence surface the messaging core depends on.
// *store.Store is the production implementation; tests substitute fakes.
type Storage interface {
	ListContacts(ctx context.Context, excludeUserID int64) ([]store.Contact, error)
	FindConversation(ctx context.Context, userLow, userHigh int64) (int64, error)
	CreateConversation(ctx context.Context, userLow, userHigh int64) (int64, error)
	GetConversation(ctx context.Context, id int64) (store.Conversation, error)
	InsertMessage(ctx context.Context, conversationID, senderID int64, text string) (store.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]store.Message, error)
}
