/*
Package handler provides HTTP handler functions for conversation resolution and message history.
*/
package handler

import (
	"net/http"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

// HandleResolveConversation resolves the unordered pair of user ids in the URL
// to the single canonical conversation, creating it on first request.
// Responds `{"conversationId": N}`.
func HandleResolveConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userA, okA := parseIDParam(r, "userA")
		userB, okB := parseIDParam(r, "userB")
		if !okA || !okB {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conversationID, customErr := deps.Resolver.Resolve(r.Context(), userA, userB)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"conversationId": conversationID,
		})
	}
}

// HandleListMessages returns a conversation's full message history, hydrated
// with sender names and ordered ascending by creation time.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := parseIDParam(r, "conversationID")
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Storage.ListMessages(r.Context(), conversationID)
		if err != nil {
			logx.Error(err, "Failed to list messages", "conversation_id", conversationID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}
