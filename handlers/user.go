package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mfcarvalho/flashdeck-api/auth"
	"github.com/mfcarvalho/flashdeck-api/config"
	"github.com/mfcarvalho/flashdeck-api/models"
)

// POST /api/users
//
// Login-or-create flow: resolves the user by nickname and hands back a
// session cookie. Safe to call repeatedly from the login popup.
func (db *DBHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		logrus.Warnf("AddUser: Decoding error: %v", err)
		return
	}

	if req.Nickname == "" {
		http.Error(w, "Nickname is required", http.StatusBadRequest)
		return
	}

	var existingUser models.User
	result := db.Where("nickname = ?", req.Nickname).First(&existingUser)
	if result.Error == nil {
		tokenString, err := auth.CreateToken(existingUser.Nickname)
		if err != nil {
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			logrus.Errorf("AddUser: Token generation error: %v", err)
			return
		}

		setAuthCookie(w, tokenString)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "User already exists!",
		})
		logrus.Infof("AddUser: User %s already exists", existingUser.Nickname)
		return
	}

	user := models.User{Nickname: req.Nickname}
	result = db.Create(&user)
	if result.Error != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		logrus.Errorf("AddUser: Database creation error: %v", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "No user was created", http.StatusInternalServerError)
		logrus.Error("AddUser: No rows affected when creating user")
		return
	}

	tokenString, err := auth.CreateToken(user.Nickname)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		logrus.Errorf("AddUser: Token generation error: %v", err)
		return
	}

	setAuthCookie(w, tokenString)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": user,
	})
	logrus.Infof("AddUser: User %s created successfully", user.Nickname)
}

func setAuthCookie(w http.ResponseWriter, tokenString string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Domain:   config.Env.Domain,
		Secure:   config.Env.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}
