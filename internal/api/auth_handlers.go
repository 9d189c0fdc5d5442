package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"golfplace/internal/auth"
	"golfplace/internal/balance"
)

type AuthHandler struct {
	Registry  *auth.Registry
	Balances  *balance.Store
	JWTSecret []byte
}

func NewAuthHandler(registry *auth.Registry, balances *balance.Store, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{Registry: registry, Balances: balances, JWTSecret: jwtSecret}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}
	acct, err := h.Registry.Signup(req.Email, req.Password, req.FullName, req.Phone, req.IsMember)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			http.Error(w, "User already exists", http.StatusBadRequest)
			return
		}
		http.Error(w, "Could not register user", http.StatusInternalServerError)
		return
	}
	if acct.IsMember && req.MemberHours > 0 {
		h.Balances.Credit(acct.Email, req.MemberHours)
	}
	token, err := auth.IssueToken(h.JWTSecret, acct.Email)
	if err != nil {
		http.Error(w, "Could not issue token", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		IsMember:    acct.IsMember,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	acct, err := h.Registry.Authenticate(req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusBadRequest)
		return
	}
	token, err := auth.IssueToken(h.JWTSecret, acct.Email)
	if err != nil {
		http.Error(w, "Could not issue token", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		IsMember:    acct.IsMember,
	})
}
