package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mfcarvalho/flashdeck-api/models"
	"github.com/mfcarvalho/flashdeck-api/utils"
)

// POST /api/classes
func (db *DBHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		logrus.Warnf("CreateClass: Unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		logrus.Warnf("CreateClass: User not found for auth0ID=%s: %v", auth0ID, err)
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	type CreateClassRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var req CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.Warnf("CreateClass: Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "Class name is required", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		logrus.Errorf("CreateClass: Failed to generate publicID: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	class := models.Class{
		PublicID:    publicID,
		Name:        req.Name,
		Description: req.Description,
		UserID:      user.ID,
	}

	if err := db.Create(&class).Error; err != nil {
		logrus.Errorf("CreateClass: Failed to create class: %v", err)
		http.Error(w, "Failed to create class", http.StatusInternalServerError)
		return
	}

	logrus.Infof("CreateClass: Successfully created class with publicID=%s for userID=%d", publicID, user.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(class)
}

// GET /api/classes/{classID}
func (db *DBHandler) GetClassByID(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		logrus.Warnf("GetClassByID: classID=%s rejected: %v", classID, err)
		http.Error(w, fmt.Sprintf("Class with ID %s not available", classID), status)
		return
	}

	if err := db.Preload("Flashcards", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		Where("id = ?", class.ID).First(class).Error; err != nil {
		logrus.Errorf("GetClassByID: Failed to load cards for classID=%s: %v", classID, err)
		http.Error(w, "Failed to load class", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(class)
}

// PUT /api/classes/{classID}
//
// Besides renaming, this carries the Edit view's per-card batch: each entry
// is flagged for create, update or delete.
func (db *DBHandler) UpdateClassByID(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		logrus.Warnf("UpdateClassByID: classID=%s rejected: %v", classID, err)
		http.Error(w, fmt.Sprintf("Class with ID %s not available", classID), status)
		return
	}

	type FlashcardUpdate struct {
		ID           string `json:"id"`
		Front        string `json:"front"`
		Back         string `json:"back"`
		ShouldDelete bool   `json:"shouldDelete"`
		ShouldUpdate bool   `json:"shouldUpdate"`
		ShouldCreate bool   `json:"shouldCreate"`
	}
	type UpdateClassRequest struct {
		Name        *string            `json:"name,omitempty"`
		Description *string            `json:"description,omitempty"`
		Flashcards  *[]FlashcardUpdate `json:"flashcards,omitempty"`
	}

	var req UpdateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.Warnf("UpdateClassByID: Invalid request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	updated := false
	if req.Name != nil && *req.Name != "" && class.Name != *req.Name {
		class.Name = *req.Name
		updated = true
	}
	if req.Description != nil && class.Description != *req.Description {
		class.Description = *req.Description
		updated = true
	}

	// Save field changes before the card batch so the refreshed counter is
	// not clobbered by a stale struct write afterwards
	if updated {
		if err := db.Save(class).Error; err != nil {
			logrus.Errorf("UpdateClassByID: Failed to update classID=%s: %v", classID, err)
			http.Error(w, fmt.Sprintf("Failed to update class with ID %s", classID), http.StatusInternalServerError)
			return
		}
	}

	if req.Flashcards != nil {
		for _, fc := range *req.Flashcards {
			if fc.ID != "" {
				if fc.ShouldDelete {
					if err := db.Where("public_id = ? AND class_id = ?", fc.ID, class.ID).Delete(&models.Flashcard{}).Error; err != nil {
						logrus.Errorf("UpdateClassByID: Failed to delete flashcard id=%s for classID=%s: %v", fc.ID, classID, err)
					}
					continue
				}
				if fc.ShouldUpdate {
					if fc.Front == "" || fc.Back == "" {
						continue
					}
					var flashcard models.Flashcard
					if err := db.Where("public_id = ? AND class_id = ?", fc.ID, class.ID).First(&flashcard).Error; err != nil {
						logrus.Warnf("UpdateClassByID: Flashcard not found id=%s for classID=%s", fc.ID, classID)
						continue
					}
					flashcard.Front = fc.Front
					flashcard.Back = fc.Back
					if err := db.Save(&flashcard).Error; err != nil {
						logrus.Errorf("UpdateClassByID: Failed to update flashcard id=%s for classID=%s: %v", fc.ID, classID, err)
					}
				}
			} else if fc.ShouldCreate {
				if fc.Front == "" || fc.Back == "" {
					continue
				}
				publicID, err := gonanoid.New()
				if err != nil {
					logrus.Errorf("UpdateClassByID: Failed to generate public_id for new flashcard: %v", err)
					continue
				}
				newFlashcard := models.Flashcard{
					PublicID: publicID,
					Front:    fc.Front,
					Back:     fc.Back,
					ClassID:  class.ID,
				}
				if err := db.Create(&newFlashcard).Error; err != nil {
					logrus.Errorf("UpdateClassByID: Failed to create new flashcard for classID=%s: %v", classID, err)
				}
			}
		}

		if err := refreshCardCount(db.DB, class.ID); err != nil {
			logrus.Errorf("UpdateClassByID: Failed to refresh card count for classID=%s: %v", classID, err)
		}
	}

	// Re-read so the response carries the post-batch counter
	if err := db.Where("id = ?", class.ID).First(class).Error; err != nil {
		logrus.Errorf("UpdateClassByID: Failed to reload classID=%s: %v", classID, err)
		http.Error(w, "Failed to load class", http.StatusInternalServerError)
		return
	}

	logrus.Infof("UpdateClassByID: Successfully updated classID=%s", classID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(class)
}

// DELETE /api/classes/{classID}
//
// Cards go first, then the class. The two deletes are sequential, not
// atomic: a failure in between leaves orphaned cards behind.
func (db *DBHandler) DeleteClassByID(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	class, _, status, err := db.findOwnedClass(r, classID)
	if err != nil {
		logrus.Warnf("DeleteClassByID: classID=%s rejected: %v", classID, err)
		http.Error(w, fmt.Sprintf("Class with ID %s not available", classID), status)
		return
	}

	if err := db.Where("class_id = ?", class.ID).Delete(&models.Flashcard{}).Error; err != nil {
		logrus.Errorf("DeleteClassByID: Failed to delete flashcards for classID=%s: %v", classID, err)
		http.Error(w, "Failed to delete flashcards", http.StatusInternalServerError)
		return
	}

	result := db.Delete(class)
	if result.Error != nil {
		logrus.Errorf("DeleteClassByID: Failed to delete classID=%s: %v", classID, result.Error)
		http.Error(w, fmt.Sprintf("Failed to delete class with ID %s", classID), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		logrus.Warnf("DeleteClassByID: Class not found for classID=%s during delete operation", classID)
		http.Error(w, fmt.Sprintf("Class not found for public_id=%s", classID), http.StatusNotFound)
		return
	}

	logrus.Infof("DeleteClassByID: Successfully deleted classID=%s", classID)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/users/{nickname}/classes
func (db *DBHandler) ListClassesForUser(w http.ResponseWriter, r *http.Request) {
	nickname := r.PathValue("nickname")
	if nickname == "" {
		http.Error(w, "Nickname is required", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		logrus.Warnf("ListClassesForUser: User not found for nickname=%s: %v", nickname, err)
		http.Error(w, fmt.Sprintf("User not found for nickname=%s", nickname), http.StatusNotFound)
		return
	}

	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok || user.Auth0ID != auth0ID {
		logrus.Warnf("ListClassesForUser: Forbidden access to classes of userID=%d", user.ID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var classes []models.Class
	if err := db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&classes).Error; err != nil {
		logrus.Errorf("ListClassesForUser: Failed to fetch classes for userID=%d: %v", user.ID, err)
		http.Error(w, fmt.Sprintf("Failed to fetch classes for user %s", nickname), http.StatusInternalServerError)
		return
	}

	if len(classes) == 0 {
		classes = []models.Class{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(classes)
}
