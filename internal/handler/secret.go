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

type SecretHandler struct {
	secretService *service.SecretService
}

func NewSecretHandler(secretService *service.SecretService) *SecretHandler {
	return &SecretHandler{
		secretService: secretService,
	}
}

// SetSecret handles PUT /api/v1/projects/:projectName/environments/:envName/secrets/:key
func (h *SecretHandler) SetSecret(c *gin.Context) {
	var req dto.SetSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	result, err := h.secretService.SetSecret(
		c.Param("projectName"), c.Param("envName"), c.Param("key"), &req, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	if result.Version == 1 {
		c.JSON(http.StatusCreated, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BulkSetSecrets handles POST /api/v1/projects/:projectName/environments/:envName/secrets/bulk
func (h *SecretHandler) BulkSetSecrets(c *gin.Context) {
	var req dto.BulkSetSecretsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	result, err := h.secretService.BulkSetSecrets(
		c.Param("projectName"), c.Param("envName"), &req, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetSecret handles GET /api/v1/projects/:projectName/environments/:envName/secrets/:key
func (h *SecretHandler) GetSecret(c *gin.Context) {
	secret, err := h.secretService.GetSecret(
		c.Param("projectName"), c.Param("envName"), c.Param("key"), actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, secret)
}

// ListSecrets handles GET /api/v1/projects/:projectName/environments/:envName/secrets
func (h *SecretHandler) ListSecrets(c *gin.Context) {
	secrets, err := h.secretService.ListSecrets(
		c.Param("projectName"), c.Param("envName"),
		c.Query("tag"), c.Query("category"), actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, secrets)
}

// DeleteSecret handles DELETE /api/v1/projects/:projectName/environments/:envName/secrets/:key
func (h *SecretHandler) DeleteSecret(c *gin.Context) {
	err := h.secretService.DeleteSecret(
		c.Param("projectName"), c.Param("envName"), c.Param("key"), actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSecretVersions handles GET /api/v1/projects/:projectName/environments/:envName/secrets/:key/versions
func (h *SecretHandler) GetSecretVersions(c *gin.Context) {
	versions, err := h.secretService.GetSecretVersions(
		c.Param("projectName"), c.Param("envName"), c.Param("key"))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, versions)
}

// ExportSecrets handles GET /api/v1/projects/:projectName/environments/:envName/export
func (h *SecretHandler) ExportSecrets(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatEnv)

	out, err := h.secretService.ExportSecrets(
		c.Param("projectName"), c.Param("envName"), format, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	contentType := "text/plain; charset=utf-8"
	switch format {
	case service.ExportFormatJSON:
		contentType = "application/json"
	case service.ExportFormatYAML:
		contentType = "application/yaml"
	}
	c.Data(http.StatusOK, contentType, []byte(out))
}

// RegisterRoutes registers all secret routes
func (h *SecretHandler) RegisterRoutes(r *gin.Engine) {
	envGroup := r.Group("/api/v1/projects/:projectName/environments/:envName")
	{
		envGroup.GET("/secrets", middleware.RequireScope(constants.ScopeRead), h.ListSecrets)
		envGroup.POST("/secrets/bulk", middleware.RequireScope(constants.ScopeWrite), h.BulkSetSecrets)
		envGroup.PUT("/secrets/:key", middleware.RequireScope(constants.ScopeWrite), h.SetSecret)
		envGroup.GET("/secrets/:key", middleware.RequireScope(constants.ScopeRead), h.GetSecret)
		envGroup.DELETE("/secrets/:key", middleware.RequireScope(constants.ScopeWrite), h.DeleteSecret)
		envGroup.GET("/secrets/:key/versions", middleware.RequireScope(constants.ScopeRead), h.GetSecretVersions)
		envGroup.GET("/export", middleware.RequireScope(constants.ScopeRead), h.ExportSecrets)
	}
}
