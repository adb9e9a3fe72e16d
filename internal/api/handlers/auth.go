package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/caohoangphucs/giadungtinthanh/internal/config"
	"github.com/caohoangphucs/giadungtinthanh/internal/utils"
)

// POST /api/auth/login
// AdminLogin godoc
// @Summary Authenticate the catalog administrator
// @Description Validates the configured admin credentials and returns a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} utils.Payload
// @Router /api/auth/login [post]
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	type Input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if !validAdminCredentials(input.Username, input.Password) {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	}

	claims := jwt.MapClaims{
		"sub":  config.Envs.AdminUser,
		"role": "admin",
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.Envs.Secret))
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to sign token",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"access_token": tokenString})
}

// validAdminCredentials compares against the configured admin account. The
// password value may be stored either as a bcrypt hash or plaintext.
func validAdminCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(config.Envs.AdminUser)) != 1 {
		return false
	}

	stored := config.Envs.AdminPassword
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// GET /api/auth/me
// AdminMe godoc
// @Summary Check the current admin session
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/me [get]
func AdminMe(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"Ok":   true,
		"Role": "admin",
		"user": config.Envs.AdminUser,
	})
}
