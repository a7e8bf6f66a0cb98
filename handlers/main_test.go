package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mfcarvalho/flashdeck-api/models"
	"github.com/mfcarvalho/flashdeck-api/study"
)

var dbCounter int

func newTestHandler(t *testing.T) *DBHandler {
	t.Helper()

	dbCounter++
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", dbCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Class{}, &models.Flashcard{}, &models.PerformanceRecord{})
	require.NoError(t, err)

	return &DBHandler{
		DB:       db,
		Sessions: study.NewManager(),
	}
}

func createUser(t *testing.T, db *DBHandler, auth0ID, nickname string) models.User {
	t.Helper()
	user := models.User{Auth0ID: auth0ID, Nickname: nickname}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createClass(t *testing.T, db *DBHandler, user models.User, name string) models.Class {
	t.Helper()
	publicID, err := gonanoid.New()
	require.NoError(t, err)
	class := models.Class{PublicID: publicID, Name: name, UserID: user.ID}
	require.NoError(t, db.Create(&class).Error)
	return class
}

func createCard(t *testing.T, db *DBHandler, class models.Class, front, back string) models.Flashcard {
	t.Helper()
	publicID, err := gonanoid.New()
	require.NoError(t, err)
	card := models.Flashcard{PublicID: publicID, Front: front, Back: back, ClassID: class.ID}
	require.NoError(t, db.Create(&card).Error)
	return card
}

// authedRequest builds a request carrying validated Auth0 claims, the way
// the JWT middleware leaves them in context.
func authedRequest(t *testing.T, method, target, auth0ID string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)

	if auth0ID != "" {
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
		}
		r = r.WithContext(context.WithValue(r.Context(), jwtmiddleware.ContextKey{}, claims))
	}
	return r
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}
