package assistants

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
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

type assistantRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Voice       string `json:"voice" validate:"required,min=1,max=100"`
	Language    string `json:"language" validate:"required,min=2,max=35"`
	Personality string `json:"personality" validate:"required,min=1,max=2000"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
}

type updateAssistantRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Voice       string `json:"voice,omitempty" validate:"omitempty,min=1,max=100"`
	Language    string `json:"language,omitempty" validate:"omitempty,min=2,max=35"`
	Personality string `json:"personality,omitempty" validate:"omitempty,min=1,max=2000"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	a, err := h.service.Create(r.Context(), ownerID, Input{
		Name:        req.Name,
		Voice:       req.Voice,
		Language:    req.Language,
		Personality: req.Personality,
		Image:       req.Image,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, a)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	a, err := h.service.GetByID(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, a)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	list, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, list)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req updateAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	a, err := h.service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), Input{
		Name:        req.Name,
		Voice:       req.Voice,
		Language:    req.Language,
		Personality: req.Personality,
		Image:       req.Image,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSONMessage(w, http.StatusOK, "assistant deleted")
}
