package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errNoAuthHeader  = errors.New("no authorization header present")
	errBadAuthHeader = errors.New("authorization header not in Bearer format")
	errBadCredential = errors.New("unknown API key ID or key does not match its hash")
)

const jwtIssuer = "ifjd"

// tokenRequest exchanges a long-lived API key for a short-lived JWT, the
// same two-step shape as the teacher's /login endpoint: callers authenticate
// once with a secret and then carry the bearer token on every subsequent
// call instead of resending the secret.
type tokenRequest struct {
	KeyID string `json:"key_id"`
	Key   string `json:"key"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (d *daemon) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, ok := d.cfg.Daemon.APIKeyHashes[req.KeyID]
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Key)) != nil {
		http.Error(w, errBadCredential.Error(), http.StatusUnauthorized)
		return
	}

	tok, err := d.generateJWT(req.KeyID)
	if err != nil {
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}
	renderJSON(w, tokenResponse{Token: tok})
}

func (d *daemon) generateJWT(keyID string) (string, error) {
	claims := jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": keyID,
		"jti": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString([]byte(d.cfg.Daemon.JWTSecret))
}

func (d *daemon) validateJWT(tokStr string) (string, error) {
	parsed, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(d.cfg.Daemon.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", err
	}

	keyID, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("cannot get subject: %w", err)
	}
	if _, ok := d.cfg.Daemon.APIKeyHashes[keyID]; !ok {
		return "", fmt.Errorf("subject key %q has been revoked", keyID)
	}
	return keyID, nil
}

// requireJWT is middleware that rejects any request whose bearer token is
// not a valid, unexpired JWT issued by handleToken for a still-provisioned
// API key ID.
func (d *daemon) requireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := bearerToken(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		if _, err := d.validateJWT(tok); err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errNoAuthHeader
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errBadAuthHeader
	}
	return strings.TrimSpace(parts[1]), nil
}
