package chats

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CommanderOutpost/remindria/internal/api"
	"github.com/CommanderOutpost/remindria/internal/auth"
)

const listLimit = 50

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var list []*ChatSession
	var err error
	if raw := r.URL.Query().Get("after"); raw != "" {
		after, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			api.HandleError(w, api.NewBadRequestError("after must be RFC3339"))
			return
		}
		list, err = h.repo.ListByOwnerAfter(r.Context(), ownerID, after, listLimit)
	} else {
		list, err = h.repo.ListByOwner(r.Context(), ownerID, listLimit)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	chat, err := h.repo.GetByID(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if chat == nil {
		api.HandleError(w, api.ErrChatNotFound)
		return
	}

	api.JSON(w, http.StatusOK, chat)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	affected, err := h.repo.Delete(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if affected == 0 {
		api.HandleError(w, api.ErrChatNotFound)
		return
	}

	api.JSONMessage(w, http.StatusOK, "chat deleted")
}
