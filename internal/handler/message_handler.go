/*
Package handler provides the HTTP handler function for posting messages.
*/
package handler

import (
	"net/http"

	"pairchat/internal/app/messaging"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// HandlePostMessage persists a message and triggers live fan-out to both
// participants' sessions. Responds with the hydrated message object.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input messaging.PostMessageInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		message, customErr := deps.Messages.Post(r.Context(), input)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, message)
	}
}
