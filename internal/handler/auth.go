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

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/service"
	"vault-api/src/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	user, err := h.authService.Register(&req, c.ClientIP())
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	token, err := h.authService.Login(&req, c.ClientIP())
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, token)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	principal, exists := middleware.GetPrincipalFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(401, "Unauthorized",
			"Authentication required"))
		return
	}

	c.JSON(http.StatusOK, dto.PrincipalResponse{
		ID:         principal.ID,
		Username:   principal.Username,
		Role:       principal.Role,
		AuthMethod: principal.AuthMethod,
	})
}

// CreateAPIKey handles POST /api/v1/api-keys
func (h *AuthHandler) CreateAPIKey(c *gin.Context) {
	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	key, err := h.authService.CreateAPIKey(&req, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, key)
}

// ListAPIKeys handles GET /api/v1/api-keys
func (h *AuthHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.authService.ListAPIKeys()
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, keys)
}

// RevokeAPIKey handles POST /api/v1/api-keys/:keyId/revoke
func (h *AuthHandler) RevokeAPIKey(c *gin.Context) {
	if err := h.authService.RevokeAPIKey(c.Param("keyId"), actorFrom(c)); err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAPIKey handles DELETE /api/v1/api-keys/:keyId
func (h *AuthHandler) DeleteAPIKey(c *gin.Context) {
	if err := h.authService.DeleteAPIKey(c.Param("keyId"), actorFrom(c)); err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers auth and API key routes. Register and login
// are listed as auth skip paths in the server wiring.
func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", h.Me)
	}

	keyGroup := r.Group("/api/v1/api-keys")
	{
		keyGroup.POST("", middleware.RequireScope(constants.ScopeAdmin), h.CreateAPIKey)
		keyGroup.GET("", middleware.RequireScope(constants.ScopeAdmin), h.ListAPIKeys)
		keyGroup.POST("/:keyId/revoke", middleware.RequireScope(constants.ScopeAdmin), h.RevokeAPIKey)
		keyGroup.DELETE("/:keyId", middleware.RequireScope(constants.ScopeAdmin), h.DeleteAPIKey)
	}
}
