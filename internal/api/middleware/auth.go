package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caohoangphucs/giadungtinthanh/internal/config"
	"github.com/caohoangphucs/giadungtinthanh/internal/utils"
)

// RequireAdmin guards mutating endpoints. The bearer credential is accepted
// when it equals the shared admin secret, or when it is an HS256 token
// signed with that secret (what the login endpoint hands out).
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			unauthorized(w)
			return
		}

		if isAdminToken(tokenStr) {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w)
	})
}

func isAdminToken(tokenStr string) bool {
	secret := config.Envs.Secret
	if subtle.ConstantTimeCompare([]byte(tokenStr), []byte(secret)) == 1 {
		return true
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}

func unauthorized(w http.ResponseWriter) {
	utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
		Success: false,
		Message: "Unauthorized",
	})
}
