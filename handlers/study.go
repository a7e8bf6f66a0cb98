package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mfcarvalho/flashdeck-api/models"
	"github.com/mfcarvalho/flashdeck-api/stats"
	"github.com/mfcarvalho/flashdeck-api/study"
	"github.com/mfcarvalho/flashdeck-api/utils"
)

type studyProgress struct {
	SessionID      string      `json:"sessionId"`
	Index          int         `json:"index"`
	Total          int         `json:"total"`
	Revealed       bool        `json:"revealed"`
	CorrectAnswers int         `json:"correctAnswers"`
	TotalAnswered  int         `json:"totalAnswered"`
	Card           *study.Card `json:"card,omitempty"`
}

type studySummary struct {
	Completed      bool     `json:"completed"`
	Accuracy       int      `json:"accuracy"`
	CompletionTime int      `json:"completionTime"`
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	CardErrors     []string `json:"cardErrors"`
}

// POST /api/classes/{classID}/study
func (db *DBHandler) StartStudySession(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, user, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		http.Error(w, "Class not available", status)
		return
	}

	var flashcards []models.Flashcard
	if err := db.Where("class_id = ?", class.ID).Order("created_at asc").Find(&flashcards).Error; err != nil {
		logrus.Errorf("StartStudySession: Failed to fetch flashcards for classID=%s: %v", classID, err)
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}

	cards := make([]study.Card, 0, len(flashcards))
	for _, fc := range flashcards {
		cards = append(cards, study.Card{ID: fc.PublicID, Front: fc.Front, Back: fc.Back})
	}

	token, session, err := db.Sessions.Start(user.ID, class.ID, cards)
	if err != nil {
		if errors.Is(err, study.ErrEmptyDeck) {
			logrus.Warnf("StartStudySession: classID=%s has no cards", classID)
			http.Error(w, "Class has no flashcards to study", http.StatusUnprocessableEntity)
			return
		}
		logrus.Errorf("StartStudySession: Failed to start session for classID=%s: %v", classID, err)
		http.Error(w, "Failed to start study session", http.StatusInternalServerError)
		return
	}

	current, _ := session.Current()
	logrus.Infof("StartStudySession: Started session=%s over %d cards for classID=%s", token, session.Size(), classID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(studyProgress{
		SessionID: token,
		Index:     session.Index(),
		Total:     session.Size(),
		Card:      &current,
	})
}

// findSession resolves a session token and checks it belongs to the caller.
func (db *DBHandler) findSession(r *http.Request, token string) (*study.Session, int, error) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		return nil, http.StatusUnauthorized, errors.New("no credentials")
	}

	session, ok := db.Sessions.Get(token)
	if !ok {
		return nil, http.StatusNotFound, errors.New("session not found")
	}

	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, http.StatusNotFound, err
	}
	if user.ID != session.UserID {
		return nil, http.StatusForbidden, errors.New("session owned by another user")
	}
	return session, http.StatusOK, nil
}

// GET /api/study/{sessionID}
func (db *DBHandler) GetStudySession(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("sessionID")
	session, status, err := db.findSession(r, token)
	if err != nil {
		http.Error(w, "Study session not available", status)
		return
	}

	current, err := session.Current()
	if err != nil {
		http.Error(w, "Study session already completed", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(studyProgress{
		SessionID:      token,
		Index:          session.Index(),
		Total:          session.Size(),
		Revealed:       session.State() == study.AwaitingJudgment,
		CorrectAnswers: session.CorrectAnswers(),
		TotalAnswered:  session.TotalAnswered(),
		Card:           &current,
	})
}

// POST /api/study/{sessionID}/reveal
func (db *DBHandler) RevealCard(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("sessionID")
	session, status, err := db.findSession(r, token)
	if err != nil {
		http.Error(w, "Study session not available", status)
		return
	}

	card, err := session.Reveal()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(studyProgress{
		SessionID:      token,
		Index:          session.Index(),
		Total:          session.Size(),
		Revealed:       true,
		CorrectAnswers: session.CorrectAnswers(),
		TotalAnswered:  session.TotalAnswered(),
		Card:           &card,
	})
}

// POST /api/study/{sessionID}/answer
//
// On the last card this finalizes the session: the performance record is
// the durable write, the class's last-studied timestamp is touched in the
// background, best effort.
func (db *DBHandler) AnswerCard(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("sessionID")
	session, status, err := db.findSession(r, token)
	if err != nil {
		http.Error(w, "Study session not available", status)
		return
	}

	type AnswerRequest struct {
		Correct *bool `json:"correct"`
	}
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Correct == nil {
		http.Error(w, "Field correct is required", http.StatusBadRequest)
		return
	}

	if err := session.Judge(*req.Correct); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if !session.Completed() {
		current, _ := session.Current()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(studyProgress{
			SessionID:      token,
			Index:          session.Index(),
			Total:          session.Size(),
			CorrectAnswers: session.CorrectAnswers(),
			TotalAnswered:  session.TotalAnswered(),
			Card:           &current,
		})
		return
	}

	db.Sessions.Remove(token)

	result := stats.Finalize(session.CorrectAnswers(), session.Size(), session.CardErrors(), time.Since(session.StartedAt()))
	record := models.PerformanceRecord{
		UserID:         session.UserID,
		ClassID:        session.ClassID,
		Accuracy:       result.Accuracy,
		CompletionTime: result.CompletionTime,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		CardErrors:     result.CardErrors,
	}
	if err := db.Create(&record).Error; err != nil {
		logrus.Errorf("AnswerCard: Failed to save performance for classID=%d: %v", session.ClassID, err)
		http.Error(w, "Failed to save performance", http.StatusInternalServerError)
		return
	}

	go touchLastStudied(db.DB, session.ClassID)

	logrus.Infof("AnswerCard: Session=%s completed with accuracy=%d over %d cards", token, result.Accuracy, result.TotalQuestions)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(studySummary{
		Completed:      true,
		Accuracy:       result.Accuracy,
		CompletionTime: result.CompletionTime,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		CardErrors:     result.CardErrors,
	})
}

// touchLastStudied updates the class's last-studied timestamp. The update
// is independent of the performance insert; retrying narrows the window
// where the record is durable but the timestamp stale, it does not close it.
func touchLastStudied(db *gorm.DB, classID uint) {
	now := time.Now()
	err := retry.Do(
		func() error {
			return db.Model(&models.Class{}).Where("id = ?", classID).Update("last_studied_at", now).Error
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
	)
	if err != nil {
		logrus.Errorf("touchLastStudied: Failed to update classID=%d: %v", classID, err)
	}
}
