package assistant

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/CommanderOutpost/remindria/internal/api"
	"github.com/CommanderOutpost/remindria/internal/auth"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

type chatRequest struct {
	ChatID      string `json:"chat_id,omitempty" validate:"omitempty,uuid"`
	AssistantID string `json:"assistant_id,omitempty" validate:"omitempty,uuid"`
	Prompt      string `json:"prompt" validate:"required,min=1,max=4000"`
	Mode        string `json:"mode,omitempty" validate:"omitempty,oneof=text voice"`
}

// Chat handles one conversation turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.service.Turn(r.Context(), ownerID, TurnInput{
		ChatID:      req.ChatID,
		AssistantID: req.AssistantID,
		Prompt:      req.Prompt,
		Mode:        req.Mode,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, result)
}
