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
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"vault-api/src/internal/crypto"
	"vault-api/src/internal/repository"
	"vault-api/src/internal/utils"
)

// VaultClaims represents the JWT claims issued by the auth service
type VaultClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the resolved caller identity set on the request context.
// Scopes is only populated for API key principals; bearer-token and
// dev-mode principals act with the full rights of their role.
type Principal struct {
	ID         string
	Username   string
	Role       string
	AuthMethod string
	Scopes     []string
	ProjectIDs []string
}

// HasScope reports whether the principal carries the given scope.
// Non-API-key principals are not scope restricted.
func (p *Principal) HasScope(scope string) bool {
	if p.AuthMethod != "api_key" {
		return true
	}
	for _, s := range p.Scopes {
		if s == scope || s == "admin" {
			return true
		}
	}
	return false
}

// AuthConfig holds the configuration for request authentication
type AuthConfig struct {
	SecretKey   string
	TokenIssuer string
	SkipPaths   []string // Paths to skip authentication
	DevMode     bool     // Accept unauthenticated requests as a fixed admin
}

// AuthMiddleware resolves the caller identity for every request. The
// resolution order is: Bearer JWT, then X-API-Key, then (only when dev
// mode is explicitly enabled) a fixed local admin. Anything else is 401.
func AuthMiddleware(config AuthConfig, apiKeyRepo repository.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip authentication for specified paths
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
				})
				c.Abort()
				return
			}

			principal, err := resolveBearerToken(tokenString, config)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid or expired token",
				})
				c.Abort()
				return
			}

			setPrincipal(c, principal)
			c.Next()
			return
		}

		if rawKey := c.GetHeader("X-API-Key"); rawKey != "" {
			principal, err := resolveAPIKey(rawKey, apiKeyRepo)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": err.Error(),
				})
				c.Abort()
				return
			}

			setPrincipal(c, principal)
			c.Next()
			return
		}

		if config.DevMode {
			setPrincipal(c, &Principal{
				ID:         "dev",
				Username:   "dev",
				Role:       "admin",
				AuthMethod: "dev",
			})
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required: provide a Bearer token or X-API-Key header",
		})
		c.Abort()
	}
}

// resolveBearerToken verifies an HS256 JWT and builds a principal from
// its claims.
func resolveBearerToken(tokenString string, config AuthConfig) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VaultClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*VaultClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if config.TokenIssuer != "" && claims.Issuer != config.TokenIssuer {
		return nil, fmt.Errorf("invalid token issuer")
	}

	return &Principal{
		ID:         claims.Subject,
		Username:   claims.Username,
		Role:       claims.Role,
		AuthMethod: "jwt",
	}, nil
}

// resolveAPIKey looks up the one-way hash of the presented key. The raw
// key value never reaches storage or logs.
func resolveAPIKey(rawKey string, apiKeyRepo repository.APIKeyRepository) (*Principal, error) {
	apiKey, err := apiKeyRepo.GetAPIKeyByHash(crypto.HashAPIKey(rawKey))
	if err != nil {
		utils.LogError("Failed to look up API key", err)
		return nil, fmt.Errorf("authentication unavailable")
	}
	if apiKey == nil || !apiKey.IsActive {
		return nil, fmt.Errorf("invalid API key")
	}
	if apiKey.IsExpired(time.Now()) {
		return nil, fmt.Errorf("API key has expired")
	}

	if err := apiKeyRepo.TouchLastUsed(apiKey.ID, time.Now()); err != nil {
		// Usage tracking must not fail the request
		utils.LogWarning(fmt.Sprintf("Failed to update last_used_at for API key %s: %v", apiKey.ID, err))
	}

	return &Principal{
		ID:         apiKey.ID,
		Username:   apiKey.Name,
		AuthMethod: "api_key",
		Scopes:     apiKey.Scopes,
		ProjectIDs: apiKey.ProjectIDs,
	}, nil
}

// setPrincipal stores the resolved identity in the Gin context
func setPrincipal(c *gin.Context, p *Principal) {
	c.Set("principal", p)
	c.Set("username", p.Username)
}

// GetPrincipalFromContext extracts the resolved principal from the Gin context
func GetPrincipalFromContext(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get("principal")
	if !exists {
		return nil, false
	}
	principal, ok := value.(*Principal)
	return principal, ok
}

// GetUsernameFromContext extracts the username from the Gin context
func GetUsernameFromContext(c *gin.Context) (string, bool) {
	username, exists := c.Get("username")
	if !exists {
		return "", false
	}
	usernameStr, ok := username.(string)
	return usernameStr, ok
}

// RequireScope creates a middleware that requires the given scope.
// Only API key principals are scope restricted; bearer-token and
// dev-mode principals pass through.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, exists := GetPrincipalFromContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !principal.HasScope(scope) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("API key lacks required scope: %s", scope),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
