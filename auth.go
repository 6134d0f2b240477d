package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/render"
)

var (
	JWT_LIFESPAN time.Duration = time.Hour
)

type contextKey string

const jwtContextKey contextKey = "jwt"

//---
// Generic payloads
//---

type JWTPayload struct {
	SignedToken string `json:"token"`
}

// ErrResponse renders an error as json with a matching status code.
type ErrResponse struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrUnauthorized(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Error rendering response",
		ErrorText:      err.Error(),
	}
}

//---
// Helper functions
//---

func jwtSecret() []byte {
	return []byte(ENV.JWT_SECRET)
}

// Produce a standard format JWT token
func newJWT(sub string) (ts string, err error) {
	now := time.Now().UTC()
	claims := jwt.StandardClaims{
		Issuer:    ENV.JWT_ISSUER,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(JWT_LIFESPAN).Unix(),
		Subject:   sub,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(jwtSecret())
}

//---
// Views
//---

// Provides a new token to the client
func JWTRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := r.Context().Value(jwtContextKey).(*jwt.Token)
	if !ok {
		render.Render(w, r, ErrUnauthorized(JWTEmpty))
		return
	}
	claims := token.Claims.(*jwt.StandardClaims)

	tokenString, err := newJWT(claims.Subject)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}

	render.JSON(w, r, JWTPayload{tokenString})
}

//---
// Authentication middleware
//---

var (
	JWTEmpty   = errors.New("Bearer token not provided")
	JWTInvalid = errors.New("Invalid token")
	JWTExpired = errors.New("Token has expired")
)

func ValidateJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)

		// Token is required, cya
		if tokenStr == "" {
			render.Render(w, r, ErrUnauthorized(JWTEmpty))
			return
		}

		token, err := jwt.ParseWithClaims(tokenStr,
			&jwt.StandardClaims{},
			func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS512 {
					return nil, JWTInvalid
				}
				return jwtSecret(), nil
			})

		if err != nil {
			reason := JWTInvalid
			if jwterr, ok := err.(*jwt.ValidationError); ok && jwterr.Errors&jwt.ValidationErrorExpired != 0 {
				reason = JWTExpired
			}

			render.Render(w, r, ErrUnauthorized(reason))
			return
		}

		if !token.Valid {
			render.Render(w, r, ErrUnauthorized(JWTInvalid))
			return
		}

		ctx := context.WithValue(r.Context(), jwtContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest looks in the query, the authorization header and then the
// jwt cookie. Browsers cannot set headers on a websocket upgrade.
func tokenFromRequest(r *http.Request) string {
	if tokenStr := r.URL.Query().Get("jwt"); tokenStr != "" {
		return tokenStr
	}

	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:6]) == "BEARER" {
		return bearer[7:]
	}

	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}
