package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// handleLogin exchanges the teacher PIN for a bearer token. When a bcrypt
// hash is configured it wins over the plain PIN.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.pinMatches(req.PIN) {
		respondError(w, http.StatusUnauthorized, "wrong PIN")
		return
	}

	token, expiresAt, err := s.issueToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "issuing token failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expiresAt.Unix(),
	})
}

func (s *Server) pinMatches(pin string) bool {
	if pin == "" {
		return false
	}
	if hash := s.cfg.Auth.PINHash; hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(s.cfg.Auth.PIN)) == 1
}

func (s *Server) issueToken() (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.Auth.AccessTokenTTL) * time.Minute)
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// isAdmin reports whether the request carries a valid admin token. Student
// endpoints use it to widen the response rather than reject.
func (s *Server) isAdmin(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || raw == "" {
		return false
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	return err == nil && token.Valid
}

// requireAdmin guards mutating endpoints behind the PIN-derived token.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			respondError(w, http.StatusUnauthorized, "admin token required")
			return
		}
		next(w, r)
	}
}
