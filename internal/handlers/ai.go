package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/genai"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, history []genai.Message, message string) (string, error)
}

type AIHandler struct {
	generator TextGenerator
	logger    *slog.Logger
}

func NewAIHandler(generator TextGenerator, logger *slog.Logger) *AIHandler {
	return &AIHandler{generator: generator, logger: logger}
}

type generateDescriptionRequest struct {
	Prompt string `json:"prompt"`
}

type generateDescriptionResponse struct {
	Description string `json:"description"`
}

type chatRequest struct {
	History []genai.Message `json:"history"`
	Message string          `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// The chat endpoint reports errors under an "error" key, unlike the rest of
// the API.
type chatErrorBody struct {
	Error string `json:"error"`
}

// GenerateDescription handles POST /api/ai/generate-description.
func (h *AIHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req generateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Invalid JSON body."))
		return
	}
	if req.Prompt == "" {
		writeError(w, h.logger, apperr.New(apperr.Validation, "A prompt is required."))
		return
	}

	text, err := h.generator.GenerateText(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("text generation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: "An internal server error occurred."})
		return
	}
	writeJSON(w, http.StatusOK, generateDescriptionResponse{Description: text})
}

// Chat handles POST /api/chat.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatErrorBody{Error: "Message is required."})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, chatErrorBody{Error: "Message is required."})
		return
	}

	reply, err := h.generator.Chat(r.Context(), req.History, req.Message)
	if err != nil {
		h.logger.Error("chat generation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, chatErrorBody{Error: "Failed to get response from AI."})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
