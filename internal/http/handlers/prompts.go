package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"scenestudio/internal/middleware"
	"scenestudio/internal/providers/prompt"
)

type promptEnhanceRequest struct {
	Text string `json:"text"`
}

type promptEnhanceResponse struct {
	Text string `json:"text"`
}

func (a *App) PromptEnhance(w http.ResponseWriter, r *http.Request) {
	var req promptEnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	enhanced, err := a.Enhancer.Enhance(r.Context(), prompt.EnhanceRequest{
		Text:   req.Text,
		Locale: locale,
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "enhancer failed")
		return
	}
	a.json(w, http.StatusOK, promptEnhanceResponse{Text: enhanced})
}
