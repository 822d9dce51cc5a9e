package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognized by the staff check.
const (
	RoleAdmin    = "ADMIN"
	RoleDropApp  = "DROP_APP"
	RoleASP      = "ASP"
	RoleCustomer = "CUSTOMER"
)

// staffRoles may update jobs and read the admin analytics.
var staffRoles = map[string]bool{RoleAdmin: true, RoleDropApp: true, RoleASP: true}

// User is the resolved identity attached to a request.
type User struct {
	UID         string `bson:"uid" json:"uid"`
	Email       string `bson:"email" json:"email"`
	DisplayName string `bson:"displayName" json:"displayName"`
	Role        string `bson:"role" json:"role"`
	IsActive    bool   `bson:"isActive" json:"isActive"`
}

// IsStaff reports whether the account holds a staff role.
func (u *User) IsStaff() bool { return staffRoles[u.Role] }

// Users resolves a verified subject id to its account record.
type Users interface {
	GetUser(ctx context.Context, uid string) (*User, error)
}

var (
	ErrNoToken      = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrUserNotFound = errors.New("user not found")
	ErrInactive     = errors.New("account suspended")
)

// Verifier checks bearer tokens and resolves the account behind them.
type Verifier struct {
	secret []byte
	users  Users
}

func NewVerifier(secret string, users Users) *Verifier {
	return &Verifier{secret: []byte(secret), users: users}
}

// VerifyToken validates an HS256 bearer token and loads the account record
// behind its subject claim. Inactive accounts are rejected.
func (v *Verifier) VerifyToken(ctx context.Context, token string) (*User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}

	u, err := v.users.GetUser(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactive
	}
	if u.Email == "" {
		if email, ok := claims["email"].(string); ok {
			u.Email = email
		}
	}
	return u, nil
}

type ctxKey struct{}

// FromContext returns the authenticated user attached by the middleware.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok
}

func withUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Require verifies the bearer token and rejects the request otherwise.
// Token problems are 401; a missing, suspended, or underprivileged account
// is 403, kept distinct from a missing resource.
func (v *Verifier) Require(next http.Handler) http.Handler {
	return v.middleware(next, false)
}

// RequireStaff additionally requires one of the staff roles.
func (v *Verifier) RequireStaff(next http.Handler) http.Handler {
	return v.middleware(next, true)
}

func (v *Verifier) middleware(next http.Handler, staff bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			deny(w, http.StatusUnauthorized, "authorization token required")
			return
		}
		u, err := v.VerifyToken(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, ErrExpiredToken):
			deny(w, http.StatusUnauthorized, "token expired, please sign in again")
			return
		case errors.Is(err, ErrUserNotFound):
			deny(w, http.StatusForbidden, "user account not found")
			return
		case errors.Is(err, ErrInactive):
			deny(w, http.StatusForbidden, "user account is suspended")
			return
		default:
			deny(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if staff && !u.IsStaff() {
			deny(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// Optional attaches the user when a valid token is present and continues
// anonymously on any failure.
func (v *Verifier) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if u, err := v.VerifyToken(r.Context(), token); err == nil {
				r = r.WithContext(withUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

func deny(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
