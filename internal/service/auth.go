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
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vault-api/src/config"
	"vault-api/src/internal/constants"
	"vault-api/src/internal/crypto"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/model"
	"vault-api/src/internal/repository"
)

type AuthService struct {
	userRepo   repository.UserRepository
	apiKeyRepo repository.APIKeyRepository
	auditSvc   *AuditService
	jwtCfg     config.JWT
	signingKey string
}

func NewAuthService(userRepo repository.UserRepository, apiKeyRepo repository.APIKeyRepository,
	auditSvc *AuditService, jwtCfg config.JWT, signingKey string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		apiKeyRepo: apiKeyRepo,
		auditSvc:   auditSvc,
		jwtCfg:     jwtCfg,
		signingKey: signingKey,
	}
}

// Register creates a user account. The very first account is granted the
// admin role; everyone after that is a regular user.
func (s *AuthService) Register(req *dto.RegisterRequest, ip string) (*dto.RegisterResponse, error) {
	existing, err := s.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, constants.ErrUserExists
	}

	count, err := s.userRepo.CountUsers()
	if err != nil {
		return nil, err
	}
	role := constants.RoleUser
	if count == 0 {
		role = constants.RoleAdmin
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionUserRegister, constants.ResourceUser, user.ID,
		Actor{Name: user.Username, IP: ip}, map[string]string{"role": user.Role})

	return &dto.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// Login verifies credentials and mints a bearer token. Unknown username
// and wrong password produce the same error.
func (s *AuthService) Login(req *dto.LoginRequest, ip string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, constants.ErrInvalidCredentials
	}

	token, expiresIn, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionUserLogin, constants.ResourceUser, user.ID,
		Actor{Name: user.Username, IP: ip}, nil)

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// issueToken signs an HS256 JWT for the user
func (s *AuthService) issueToken(user *model.User) (string, int, error) {
	now := time.Now()
	expiry := time.Duration(s.jwtCfg.ExpireMinutes) * time.Minute

	claims := &middleware.VaultClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.signingKey))
	if err != nil {
		return "", 0, err
	}
	return token, int(expiry.Seconds()), nil
}

// CreateAPIKey mints a scoped machine credential. The raw key is
// returned exactly once; only its hash is stored.
func (s *AuthService) CreateAPIKey(req *dto.CreateAPIKeyRequest, actor Actor) (*dto.APIKeyResponse, error) {
	rawKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = []string{constants.ScopeRead}
	}

	key := &model.APIKey{
		ID:         uuid.New().String(),
		Name:       req.Name,
		KeyHash:    crypto.HashAPIKey(rawKey),
		Scopes:     scopes,
		ProjectIDs: req.ProjectIDs,
		CreatedAt:  time.Now(),
		IsActive:   true,
	}
	if req.ExpiresInDays > 0 {
		expiresAt := time.Now().AddDate(0, 0, req.ExpiresInDays)
		key.ExpiresAt = &expiresAt
	}

	if err := s.apiKeyRepo.CreateAPIKey(key); err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionAPIKeyCreate, constants.ResourceAPIKey, key.ID, actor,
		map[string]string{"name": key.Name})

	return &dto.APIKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Key:       rawKey,
		Scopes:    key.Scopes,
		CreatedAt: key.CreatedAt,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

// ListAPIKeys returns all API keys without their raw values or hashes
func (s *AuthService) ListAPIKeys() ([]*dto.APIKeyResponse, error) {
	keys, err := s.apiKeyRepo.ListAPIKeys()
	if err != nil {
		return nil, err
	}

	list := make([]*dto.APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		list = append(list, &dto.APIKeyResponse{
			ID:        key.ID,
			Name:      key.Name,
			Scopes:    key.Scopes,
			CreatedAt: key.CreatedAt,
			ExpiresAt: key.ExpiresAt,
		})
	}
	return list, nil
}

// RevokeAPIKey deactivates a key without removing its record
func (s *AuthService) RevokeAPIKey(id string, actor Actor) error {
	revoked, err := s.apiKeyRepo.RevokeAPIKey(id)
	if err != nil {
		return err
	}
	if !revoked {
		return constants.ErrAPIKeyNotFound
	}

	s.auditSvc.Record(constants.ActionAPIKeyRevoke, constants.ResourceAPIKey, id, actor, nil)
	return nil
}

// DeleteAPIKey permanently removes a key record
func (s *AuthService) DeleteAPIKey(id string, actor Actor) error {
	deleted, err := s.apiKeyRepo.DeleteAPIKey(id)
	if err != nil {
		return err
	}
	if !deleted {
		return constants.ErrAPIKeyNotFound
	}

	s.auditSvc.Record(constants.ActionAPIKeyDelete, constants.ResourceAPIKey, id, actor, nil)
	return nil
}
