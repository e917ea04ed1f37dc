/*
 *  Copyright (c) 2026, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"vault-api/src/internal/crypto"
	"vault-api/src/internal/model"
)

const testSecret = "test-jwt-secret"

// mockAPIKeyRepo implements repository.APIKeyRepository for middleware tests
type mockAPIKeyRepo struct {
	keys    map[string]*model.APIKey // keyed by hash
	touched []string
}

func (m *mockAPIKeyRepo) CreateAPIKey(key *model.APIKey) error { return nil }

func (m *mockAPIKeyRepo) GetAPIKeyByHash(keyHash string) (*model.APIKey, error) {
	return m.keys[keyHash], nil
}

func (m *mockAPIKeyRepo) TouchLastUsed(id string, at time.Time) error {
	m.touched = append(m.touched, id)
	return nil
}

func (m *mockAPIKeyRepo) ListAPIKeys() ([]*model.APIKey, error) { return nil, nil }
func (m *mockAPIKeyRepo) RevokeAPIKey(id string) (bool, error)  { return false, nil }
func (m *mockAPIKeyRepo) DeleteAPIKey(id string) (bool, error)  { return false, nil }

func setupAuthRouter(config AuthConfig, repo *mockAPIKeyRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(config, repo))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/whoami", func(c *gin.Context) {
		principal, _ := GetPrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": principal.Username, "method": principal.AuthMethod})
	})
	r.GET("/write", RequireScope("write"), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func signTestToken(t *testing.T, secret string, claims *VaultClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func validClaims() *VaultClaims {
	return &VaultClaims{
		Username: "alice",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "vault-api",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	config := AuthConfig{SecretKey: testSecret, TokenIssuer: "vault-api"}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + signTestToken(t, testSecret, validClaims()), http.StatusOK},
		{"wrong signing key", "Bearer " + signTestToken(t, "other-secret", validClaims()), http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupAuthRouter(config, &mockAPIKeyRepo{})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", tt.authHeader)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	r := setupAuthRouter(AuthConfig{SecretKey: testSecret}, &mockAPIKeyRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, claims))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for expired token", w.Code)
	}
}

func TestAuthMiddlewareWrongIssuer(t *testing.T) {
	claims := validClaims()
	claims.Issuer = "someone-else"

	r := setupAuthRouter(AuthConfig{SecretKey: testSecret, TokenIssuer: "vault-api"}, &mockAPIKeyRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, claims))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for wrong issuer", w.Code)
	}
}

func TestAuthMiddlewareAPIKey(t *testing.T) {
	rawKey := "av_test-raw-key"
	expired := time.Now().Add(-time.Hour)

	newRepo := func(key *model.APIKey) *mockAPIKeyRepo {
		return &mockAPIKeyRepo{keys: map[string]*model.APIKey{crypto.HashAPIKey(rawKey): key}}
	}

	tests := []struct {
		name       string
		key        *model.APIKey
		wantStatus int
	}{
		{"active key", &model.APIKey{ID: "k1", Name: "ci", IsActive: true, Scopes: []string{"read"}}, http.StatusOK},
		{"inactive key", &model.APIKey{ID: "k2", Name: "ci", IsActive: false}, http.StatusUnauthorized},
		{"expired key", &model.APIKey{ID: "k3", Name: "ci", IsActive: true, ExpiresAt: &expired}, http.StatusUnauthorized},
		{"unknown key", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAPIKeyRepo{keys: map[string]*model.APIKey{}}
			if tt.key != nil {
				repo = newRepo(tt.key)
			}
			r := setupAuthRouter(AuthConfig{SecretKey: testSecret}, repo)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("X-API-Key", rawKey)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && len(repo.touched) != 1 {
				t.Errorf("last_used_at touched %d times, want 1", len(repo.touched))
			}
		})
	}
}

func TestAuthMiddlewareNoCredentials(t *testing.T) {
	r := setupAuthRouter(AuthConfig{SecretKey: testSecret}, &mockAPIKeyRepo{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without credentials", w.Code)
	}
}

func TestAuthMiddlewareDevMode(t *testing.T) {
	r := setupAuthRouter(AuthConfig{SecretKey: testSecret, DevMode: true}, &mockAPIKeyRepo{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 in dev mode", w.Code)
	}
}

func TestAuthMiddlewareSkipPaths(t *testing.T) {
	config := AuthConfig{SecretKey: testSecret, SkipPaths: []string{"/health"}}
	r := setupAuthRouter(config, &mockAPIKeyRepo{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for skipped path", w.Code)
	}
}

func TestRequireScope(t *testing.T) {
	rawKey := "av_scope-test-key"

	tests := []struct {
		name       string
		scopes     []string
		wantStatus int
	}{
		{"has scope", []string{"write"}, http.StatusOK},
		{"admin wildcard", []string{"admin"}, http.StatusOK},
		{"missing scope", []string{"read"}, http.StatusForbidden},
		{"no scopes", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAPIKeyRepo{keys: map[string]*model.APIKey{
				crypto.HashAPIKey(rawKey): {ID: "k1", Name: "ci", IsActive: true, Scopes: tt.scopes},
			}}
			r := setupAuthRouter(AuthConfig{SecretKey: testSecret}, repo)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/write", nil)
			req.Header.Set("X-API-Key", rawKey)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireScopeDoesNotRestrictBearerPrincipals(t *testing.T) {
	r := setupAuthRouter(AuthConfig{SecretKey: testSecret}, &mockAPIKeyRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, validClaims()))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for bearer principal", w.Code)
	}
}
