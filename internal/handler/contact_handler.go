/*
Package handler provides HTTP handler functions for the contact list endpoint.
*/
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

// parseIDParam extracts a positive integer URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// HandleListContacts returns every user except the requesting one as `[{id, name}]`.
func HandleListContacts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseIDParam(r, "userID")
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		contacts, err := deps.Storage.ListContacts(r.Context(), userID)
		if err != nil {
			logx.Error(err, "Failed to list contacts", "user_id", userID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, contacts)
	}
}
