package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account is a registered customer. IsMember marks holders of a
// prepaid-hours plan; their balance lives in the balance store, not
// here.
type Account struct {
	Email        string
	FullName     string
	Phone        string
	PasswordHash []byte
	IsMember     bool
}

// Registry is the in-memory account store behind signup and login.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewRegistry() *Registry {
	return &Registry{accounts: make(map[string]*Account)}
}

func (r *Registry) Signup(email, password, fullName, phone string, isMember bool) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[email]; ok {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	acct := &Account{
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		PasswordHash: hash,
		IsMember:     isMember,
	}
	r.accounts[email] = acct
	return acct, nil
}

func (r *Registry) Authenticate(email, password string) (*Account, error) {
	r.mu.RLock()
	acct, ok := r.accounts[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

func (r *Registry) Lookup(email string) (*Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[email]
	return acct, ok
}

// IssueToken signs a bearer token for the account, expiring in one
// hour.
func IssueToken(secret []byte, email string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

type contextKey string

const accountKey contextKey = "account"

// AccountFromContext returns the account resolved by Middleware.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	acct, ok := ctx.Value(accountKey).(*Account)
	return acct, ok
}

// Middleware verifies the Authorization bearer token and puts the
// resolved account on the request context.
func Middleware(secret []byte, registry *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims := token.Claims.(*jwt.RegisteredClaims)
			acct, ok := registry.Lookup(claims.Subject)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, acct)))
		})
	}
}
