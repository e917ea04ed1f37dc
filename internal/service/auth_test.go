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

package service

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"vault-api/src/config"
	"vault-api/src/internal/constants"
	"vault-api/src/internal/database"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/repository"

	_ "github.com/mattn/go-sqlite3"
)

const testSigningKey = "test-signing-key"

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "vault.db")
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}

	db := &database.DB{DB: sqlDB}
	if _, err := db.Exec(testVaultSchema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auditSvc := NewAuditService(repository.NewAuditRepo(db))
	jwtCfg := config.JWT{Issuer: "vault-api", ExpireMinutes: 60}
	return NewAuthService(repository.NewUserRepo(db), repository.NewAPIKeyRepo(db), auditSvc, jwtCfg, testSigningKey)
}

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	svc := setupAuthService(t)

	first, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "correct-horse"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if first.Role != constants.RoleAdmin {
		t.Errorf("first user role = %s, want admin", first.Role)
	}

	second, err := svc.Register(&dto.RegisterRequest{Username: "bob", Password: "battery-staple"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.Role != constants.RoleUser {
		t.Errorf("second user role = %s, want user", second.Role)
	}

	// Usernames are unique
	if _, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "whatever1"}, "127.0.0.1"); !errors.Is(err, constants.ErrUserExists) {
		t.Errorf("duplicate register error = %v, want ErrUserExists", err)
	}
}

func TestLogin(t *testing.T) {
	svc := setupAuthService(t)
	if _, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "correct-horse"}, "127.0.0.1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, err := svc.Login(&dto.LoginRequest{Username: "alice", Password: "correct-horse"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token.TokenType != "bearer" || token.ExpiresIn != 3600 {
		t.Errorf("token = %+v, want bearer with 3600s expiry", token)
	}

	// The token verifies with the signing key and carries the identity claims
	parsed, err := jwt.ParseWithClaims(token.AccessToken, &middleware.VaultClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSigningKey), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := parsed.Claims.(*middleware.VaultClaims)
	if claims.Username != "alice" || claims.Role != constants.RoleAdmin || claims.Issuer != "vault-api" {
		t.Errorf("claims = %+v, want alice/admin/vault-api", claims)
	}

	// Wrong password and unknown user produce the same error
	if _, err := svc.Login(&dto.LoginRequest{Username: "alice", Password: "wrong-password"}, "127.0.0.1"); !errors.Is(err, constants.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(&dto.LoginRequest{Username: "mallory", Password: "wrong-password"}, "127.0.0.1"); !errors.Is(err, constants.ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	svc := setupAuthService(t)

	created, err := svc.CreateAPIKey(&dto.CreateAPIKeyRequest{
		Name:   "ci-deploy",
		Scopes: []string{constants.ScopeRead, constants.ScopeWrite},
	}, alice)
	if err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}
	if !strings.HasPrefix(created.Key, constants.APIKeyPrefix) {
		t.Errorf("raw key %q lacks the %s prefix", created.Key, constants.APIKeyPrefix)
	}

	// Listings never expose the raw key again
	keys, err := svc.ListAPIKeys()
	if err != nil {
		t.Fatalf("ListAPIKeys failed: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("keys = %d, want 1", len(keys))
	}
	if keys[0].Key != "" {
		t.Error("ListAPIKeys exposed a raw key value")
	}

	if err := svc.RevokeAPIKey(created.ID, alice); err != nil {
		t.Fatalf("RevokeAPIKey failed: %v", err)
	}
	if err := svc.DeleteAPIKey(created.ID, alice); err != nil {
		t.Fatalf("DeleteAPIKey failed: %v", err)
	}
	if err := svc.DeleteAPIKey(created.ID, alice); !errors.Is(err, constants.ErrAPIKeyNotFound) {
		t.Errorf("deleting a missing key error = %v, want ErrAPIKeyNotFound", err)
	}
}

func TestCreateAPIKeyDefaultsToReadScope(t *testing.T) {
	svc := setupAuthService(t)

	created, err := svc.CreateAPIKey(&dto.CreateAPIKeyRequest{Name: "readonly"}, alice)
	if err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}
	if len(created.Scopes) != 1 || created.Scopes[0] != constants.ScopeRead {
		t.Errorf("default scopes = %v, want [read]", created.Scopes)
	}
}
