package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
)

// PostMessageInput is the message-post request body.
type PostMessageInput struct {
	ConversationID int64  `json:"conversation_id" validate:"required,gt=0"`
	SenderID       int64  `json:"sender_id" validate:"required,gt=0"`
	RecipientID    int64  `json:"recipient_id" validate:"required,gt=0"`
	Text           string `json:"text" validate:"required"`
}

// Service persists messages and fans them out to every live session of both
// conversation participants.
type Service struct {
	storage  Storage
	registry *chat.Registry
	validate *validator.Validate
	logger   zerolog.Logger

	// mu guards convLocks. Each conversation gets its own mutex so that
	// persist-plus-enqueue is serialized per conversation: pushes for one
	// conversation reach a given session in commit order.
	mu        sync.Mutex
	convLocks map[int64]*sync.Mutex
}

// NewService constructs a Service backed by the given storage and session registry.
func NewService(storage Storage, registry *chat.Registry) *Service {
	return &Service{
		storage:   storage,
		registry:  registry,
		validate:  validator.New(),
		convLocks: make(map[int64]*sync.Mutex),
		logger:    logx.Logger().With().Str("component", "MessageService").Logger(),
	}
}

// Post validates and persists a message, then pushes the hydrated result to
// every live session of the sender and the recipient.
//
// The recipient is derived from the conversation's stored participant pair,
// not from client input: a sender outside the pair or a recipient_id that is
// not the stored peer is rejected before anything is written. Persistence
// failure aborts with no push; a failed push to one session never affects
// other sessions or the returned result.
func (s *Service) Post(ctx context.Context, input PostMessageInput) (store.Message, *errs.CustomError) {
	if err := s.validate.Struct(input); err != nil {
		return store.Message{}, errs.NewError(errs.ErrMissingFields)
	}

	conv, err := s.storage.GetConversation(ctx, input.ConversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Message{}, errs.NewError(errs.ErrConversationNotFound)
		}

		s.logger.Error().Err(err).Int64("conversation_id", input.ConversationID).Msg("Conversation load failed")
		return store.Message{}, errs.NewError(errs.ErrStorageFailure)
	}

	peer, ok := conv.Peer(input.SenderID)
	if !ok {
		return store.Message{}, errs.NewError(errs.ErrNotParticipant)
	}
	if input.RecipientID != peer {
		return store.Message{}, errs.NewError(errs.ErrRecipientMismatch)
	}

	lock := s.conversationLock(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	msg, err := s.storage.InsertMessage(ctx, conv.ID, input.SenderID, input.Text)
	if err != nil {
		s.logger.Error().Err(err).Int64("conversation_id", conv.ID).Msg("Message insert failed")
		return store.Message{}, errs.NewError(errs.ErrStorageFailure)
	}

	s.fanOut(msg, peer)

	return msg, nil
}

// conversationLock returns the mutex owned by the given conversation,
// creating it on first use. Locks are never reclaimed; the map grows with the
// number of conversations posted to since startup.
func (s *Service) conversationLock(conversationID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.convLocks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.convLocks[conversationID] = lock
	}
	return lock
}

// fanOut pushes the committed message to every live session of the sender and
// the recipient. The frame is encoded once and shared. Sessions of the sender
// receive the push too, which keeps the sender's other tabs in sync. Delivery
// is at-most-once per currently-registered session and best-effort: a failed
// push is logged and skipped.
func (s *Service) fanOut(msg store.Message, recipientID int64) {
	payload, err := chat.EncodeMessageFrame(msg)
	if err != nil {
		s.logger.Error().Err(err).Int64("message_id", msg.ID).Msg("Failed to encode message frame, skipping fan-out")
		return
	}

	delivered := 0
	for _, userID := range []int64{msg.SenderID, recipientID} {
		for _, sink := range s.registry.SessionsFor(userID) {
			if err := sink.Send(payload); err != nil {
				s.logger.Warn().Err(err).
					Str("session_id", sink.ID()).
					Int64("user_id", userID).
					Int64("message_id", msg.ID).
					Msg("Push to session failed, continuing fan-out")
				continue
			}
			delivered++
		}
	}

	s.logger.Debug().
		Int64("message_id", msg.ID).
		Int64("conversation_id", msg.ConversationID).
		Int("delivered", delivered).
		Msg("Message fan-out complete")
}
