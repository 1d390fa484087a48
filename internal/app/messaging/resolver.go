package messaging

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"pairchat/internal/app/db"
	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
)

// Resolver maps an unordered pair of distinct user identities to the single
// canonical conversation id, creating the conversation on first request.
type Resolver struct {
	storage Storage
	logger  zerolog.Logger
}

// NewResolver constructs a Resolver backed by the given storage.
func NewResolver(storage Storage) *Resolver {
	return &Resolver{
		storage: storage,
		logger:  logx.Logger().With().Str("component", "Resolver").Logger(),
	}
}

// Resolve returns the conversation id for the unordered pair {userA, userB},
// creating the conversation if none exists. The call is order-insensitive and
// race-safe: concurrent resolves for the same pair all return the same id.
//
// The pair is normalized to (min, max) before touching storage, so the schema's
// unique constraint covers both argument orders. When a concurrent creation
// wins the insert race, the resulting unique violation is absorbed by
// re-reading the winner's row; it is never surfaced to the caller.
func (r *Resolver) Resolve(ctx context.Context, userA, userB int64) (int64, *errs.CustomError) {
	if userA <= 0 || userB <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}

	if userA == userB {
		return 0, errs.NewError(errs.ErrSelfConversation)
	}

	low, high := userA, userB
	if low > high {
		low, high = high, low
	}

	id, err := r.storage.FindConversation(ctx, low, high)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		r.logger.Error().Err(err).Int64("user_low", low).Int64("user_high", high).Msg("Conversation lookup failed")
		return 0, errs.NewError(errs.ErrStorageFailure)
	}

	id, err = r.storage.CreateConversation(ctx, low, high)
	if err == nil {
		r.logger.Info().Int64("conversation_id", id).Int64("user_low", low).Int64("user_high", high).Msg("Conversation created")
		return id, nil
	}

	if db.IsUniqueViolation(err) {
		// A concurrent resolve created the row first; its id is the canonical one.
		id, err = r.storage.FindConversation(ctx, low, high)
		if err == nil {
			return id, nil
		}

		r.logger.Error().Err(err).Int64("user_low", low).Int64("user_high", high).Msg("Re-read after conversation insert conflict failed")
		return 0, errs.NewError(errs.ErrStorageFailure)
	}

	r.logger.Error().Err(err).Int64("user_low", low).Int64("user_high", high).Msg("Conversation insert failed")
	return 0, errs.NewError(errs.ErrStorageFailure)
}
