package handlers

import (
	"encoding/json"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"

	"github.com/mfcarvalho/flashdeck-api/models"
)

// GET /api/classes/{classID}/flashcards
func (db *DBHandler) GetFlashcardsForClass(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	var flashcards []models.Flashcard
	if err := db.Where("class_id = ?", class.ID).Order("created_at asc").Find(&flashcards).Error; err != nil {
		logrus.Errorf("GetFlashcardsForClass: Failed to fetch flashcards for classID=%s: %v", classID, err)
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}

	if len(flashcards) == 0 {
		flashcards = []models.Flashcard{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flashcards)
}

// POST /api/classes/{classID}/flashcards
func (db *DBHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	type FlashcardRequest struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	var req FlashcardRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	if req.Front == "" || req.Back == "" {
		http.Error(w, "Flashcard front and back are required", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	flashcard := models.Flashcard{
		PublicID: publicID,
		Front:    req.Front,
		Back:     req.Back,
		ClassID:  class.ID,
	}

	if err := db.Create(&flashcard).Error; err != nil {
		logrus.Errorf("CreateFlashcard: Failed to create flashcard for classID=%s: %v", classID, err)
		http.Error(w, "Failed to create flashcard", http.StatusInternalServerError)
		return
	}

	if err := refreshCardCount(db.DB, class.ID); err != nil {
		logrus.Errorf("CreateFlashcard: Failed to refresh card count for classID=%s: %v", classID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(flashcard)
}

// POST /api/classes/{classID}/flashcards/bulk
//
// Save path for generated decks: all cards land in one transaction so a
// rejected card leaves nothing behind.
func (db *DBHandler) CreateFlashcardsBulk(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	var requestData struct {
		Cards []struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		} `json:"cards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(requestData.Cards) == 0 {
		http.Error(w, "At least one flashcard is required", http.StatusBadRequest)
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	created := make([]models.Flashcard, 0, len(requestData.Cards))
	for _, card := range requestData.Cards {
		if card.Front == "" || card.Back == "" {
			tx.Rollback()
			http.Error(w, "Each flashcard must have a front and a back", http.StatusBadRequest)
			return
		}

		publicID, err := gonanoid.New()
		if err != nil {
			tx.Rollback()
			http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
			return
		}

		flashcard := models.Flashcard{
			PublicID: publicID,
			Front:    card.Front,
			Back:     card.Back,
			ClassID:  class.ID,
		}
		if err := tx.Create(&flashcard).Error; err != nil {
			tx.Rollback()
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		created = append(created, flashcard)
	}

	if err := refreshCardCount(tx, class.ID); err != nil {
		tx.Rollback()
		http.Error(w, "Failed to update card count", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	logrus.Infof("CreateFlashcardsBulk: Created %d flashcards for classID=%s", len(created), classID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// PUT /api/classes/{classID}/flashcards/{flashcardID}
func (db *DBHandler) UpdateFlashcardByID(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	flashcardID := r.PathValue("flashcardID")

	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	var flashcard models.Flashcard
	if err := db.Where("public_id = ? AND class_id = ?", flashcardID, class.ID).First(&flashcard).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	type FlashcardUpdateRequest struct {
		Front *string `json:"front,omitempty"`
		Back  *string `json:"back,omitempty"`
	}
	var req FlashcardUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Front != nil {
		if *req.Front == "" {
			http.Error(w, "Flashcard front cannot be empty", http.StatusBadRequest)
			return
		}
		flashcard.Front = *req.Front
	}
	if req.Back != nil {
		if *req.Back == "" {
			http.Error(w, "Flashcard back cannot be empty", http.StatusBadRequest)
			return
		}
		flashcard.Back = *req.Back
	}

	if err := db.Save(&flashcard).Error; err != nil {
		logrus.Errorf("UpdateFlashcardByID: Failed to update flashcard id=%s: %v", flashcardID, err)
		http.Error(w, "Failed to update flashcard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flashcard)
}

// DELETE /api/classes/{classID}/flashcards/{flashcardID}
func (db *DBHandler) DeleteFlashcardByID(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	flashcardID := r.PathValue("flashcardID")

	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	result := db.Where("public_id = ? AND class_id = ?", flashcardID, class.ID).Delete(&models.Flashcard{})
	if result.Error != nil {
		logrus.Errorf("DeleteFlashcardByID: Failed to delete flashcard id=%s: %v", flashcardID, result.Error)
		http.Error(w, "Failed to delete flashcard", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	if err := refreshCardCount(db.DB, class.ID); err != nil {
		logrus.Errorf("DeleteFlashcardByID: Failed to refresh card count for classID=%s: %v", classID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}
