package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/mfcarvalho/flashdeck-api/genai"
	"github.com/mfcarvalho/flashdeck-api/models"
	"github.com/mfcarvalho/flashdeck-api/study"
	"github.com/mfcarvalho/flashdeck-api/utils"
	"gorm.io/gorm"
)

// Generator produces flashcard content from a theme. Satisfied by
// *genai.Client.
type Generator interface {
	GenerateFlashcards(ctx context.Context, theme string, numCards int, language string) ([]genai.CardContent, error)
}

type DBHandler struct {
	*gorm.DB
	Sessions  *study.Manager
	Generator Generator
}

var errNotOwner = errors.New("requester does not own the class")

// findOwnedClass resolves a class by public ID and checks that the request
// comes from its owner. Classes are private to their owner, so every class
// route goes through this.
func (db *DBHandler) findOwnedClass(r *http.Request, classID string) (*models.Class, *models.User, int, error) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		return nil, nil, http.StatusUnauthorized, errors.New("no credentials")
	}

	var class models.Class
	if err := db.Preload("User").Where("public_id = ?", classID).First(&class).Error; err != nil {
		return nil, nil, http.StatusNotFound, err
	}

	if class.User.Auth0ID != auth0ID {
		return nil, nil, http.StatusForbidden, errNotOwner
	}

	return &class, &class.User, http.StatusOK, nil
}

// refreshCardCount recomputes the denormalized counter from the live card
// rows instead of trusting increments.
func refreshCardCount(tx *gorm.DB, classID uint) error {
	var count int64
	if err := tx.Model(&models.Flashcard{}).Where("class_id = ?", classID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Class{}).Where("id = ?", classID).Update("card_count", count).Error
}
