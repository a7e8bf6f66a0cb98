package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mfcarvalho/flashdeck-api/models"
	"github.com/mfcarvalho/flashdeck-api/stats"
	"github.com/mfcarvalho/flashdeck-api/utils"
)

// POST /api/performance
//
// Save contract for clients that drive the study loop themselves. Field
// names are the wire contract of the original save endpoint.
func (db *DBHandler) SavePerformance(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type SaveRequest struct {
		UserID         *string   `json:"user_id"`
		ClassID        *string   `json:"class_id"`
		Accuracy       *int      `json:"accuracy"`
		CompletionTime *int      `json:"completion_time"`
		CorrectAnswers *int      `json:"correct_answers"`
		TotalQuestions *int      `json:"total_questions"`
		CardErrors     *[]string `json:"card_errors"`
	}
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "No data provided", http.StatusBadRequest)
		return
	}

	missing := ""
	switch {
	case req.UserID == nil:
		missing = "user_id"
	case req.ClassID == nil:
		missing = "class_id"
	case req.Accuracy == nil:
		missing = "accuracy"
	case req.CompletionTime == nil:
		missing = "completion_time"
	case req.CorrectAnswers == nil:
		missing = "correct_answers"
	case req.TotalQuestions == nil:
		missing = "total_questions"
	case req.CardErrors == nil:
		missing = "card_errors"
	}
	if missing != "" {
		http.Error(w, fmt.Sprintf("Missing required field: %s", missing), http.StatusBadRequest)
		return
	}

	if *req.UserID != auth0ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if *req.Accuracy < 0 || *req.Accuracy > 100 || *req.CompletionTime < 0 {
		http.Error(w, "Invalid performance values", http.StatusBadRequest)
		return
	}

	class, user, status, err := db.findOwnedClass(r, *req.ClassID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	record := models.PerformanceRecord{
		UserID:         user.ID,
		ClassID:        class.ID,
		Accuracy:       *req.Accuracy,
		CompletionTime: *req.CompletionTime,
		CorrectAnswers: *req.CorrectAnswers,
		TotalQuestions: *req.TotalQuestions,
		CardErrors:     *req.CardErrors,
	}
	if err := db.Create(&record).Error; err != nil {
		logrus.Errorf("SavePerformance: Failed to create record for classID=%s: %v", *req.ClassID, err)
		http.Error(w, "Failed to save performance", http.StatusInternalServerError)
		return
	}

	go touchLastStudied(db.DB, class.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// GET /api/classes/{classID}/performance
func (db *DBHandler) GetClassPerformance(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, user, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	records, err := db.classRecords(user.ID, class.ID)
	if err != nil {
		logrus.Errorf("GetClassPerformance: Failed to fetch records for classID=%s: %v", classID, err)
		http.Error(w, "Failed to fetch performance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GET /api/classes/{classID}/performance/best
func (db *DBHandler) GetBestPerformance(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, user, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	records, err := db.classRecords(user.ID, class.ID)
	if err != nil {
		logrus.Errorf("GetBestPerformance: Failed to fetch records for classID=%s: %v", classID, err)
		http.Error(w, "Failed to fetch performance", http.StatusInternalServerError)
		return
	}

	// Absent history encodes as a JSON null
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats.Best(records))
}

// GET /api/classes/{classID}/performance/errors?limit=N
func (db *DBHandler) GetCardErrorStats(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, user, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	records, err := db.classRecords(user.ID, class.ID)
	if err != nil {
		logrus.Errorf("GetCardErrorStats: Failed to fetch records for classID=%s: %v", classID, err)
		http.Error(w, "Failed to fetch performance", http.StatusInternalServerError)
		return
	}

	var liveCards []models.Flashcard
	if err := db.Where("class_id = ?", class.ID).Find(&liveCards).Error; err != nil {
		logrus.Errorf("GetCardErrorStats: Failed to fetch flashcards for classID=%s: %v", classID, err)
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}

	ranking := stats.CardErrorRanking(records, liveCards)

	// Truncation is the consumer's choice; the web client asks for 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		if limit < len(ranking) {
			ranking = ranking[:limit]
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ranking)
}

func (db *DBHandler) classRecords(userID, classID uint) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	err := db.Where("user_id = ? AND class_id = ?", userID, classID).
		Order("completed_at desc").
		Find(&records).Error
	if records == nil {
		records = []models.PerformanceRecord{}
	}
	return records, err
}
