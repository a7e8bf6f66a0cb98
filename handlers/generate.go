package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mfcarvalho/flashdeck-api/genai"
	"github.com/mfcarvalho/flashdeck-api/utils"
)

// POST /api/generate
//
// Request and response follow the generation contract the web client
// already speaks: {theme, num_cards, language, user_id} in,
// {flashcards: [{front, back}...]} out.
func (db *DBHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type GenerateRequest struct {
		Theme    string `json:"theme"`
		NumCards int    `json:"num_cards"`
		Language string `json:"language"`
		UserID   string `json:"user_id"`
	}
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "No data provided", http.StatusBadRequest)
		return
	}

	if req.Theme == "" || req.UserID == "" {
		http.Error(w, "Theme and user_id are required", http.StatusBadRequest)
		return
	}
	if req.UserID != auth0ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if req.Language == "" {
		req.Language = "pt"
	}
	if req.NumCards == 0 {
		req.NumCards = 10
	}

	// The generation call is slow; the request context carries the
	// client's cancellation through to the model call.
	cards, err := db.Generator.GenerateFlashcards(r.Context(), req.Theme, req.NumCards, req.Language)
	if err != nil {
		if errors.Is(err, genai.ErrEmptyResult) {
			logrus.Warnf("GenerateFlashcards: Empty result for theme=%q", req.Theme)
			http.Error(w, "Invalid response structure from AI", http.StatusBadGateway)
			return
		}
		logrus.Errorf("GenerateFlashcards: Generation failed for theme=%q: %v", req.Theme, err)
		http.Error(w, "Failed to generate flashcards", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]genai.CardContent{"flashcards": cards})
}
