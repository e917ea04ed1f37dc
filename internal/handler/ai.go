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

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/service"
	"vault-api/src/internal/utils"
)

// AIHandler exposes the agent-facing surface: direct secret fetch for
// runtime credential injection and the tool-call dispatch with its
// machine-readable tool definitions.
type AIHandler struct {
	secretService *service.SecretService
	toolService   *service.ToolService
}

func NewAIHandler(secretService *service.SecretService, toolService *service.ToolService) *AIHandler {
	return &AIHandler{
		secretService: secretService,
		toolService:   toolService,
	}
}

// ToolDefinition describes one tool in listings and OpenAI exports
type ToolDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  *openapi3.Schema `json:"parameters"`
}

// GetSecrets handles POST /api/v1/ai/secrets
func (h *AIHandler) GetSecrets(c *gin.Context) {
	var req dto.AISecretsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	environment := req.Environment
	if environment == "" {
		environment = "development"
	}

	secrets, err := h.secretService.GetEnvironmentSecrets(req.Project, environment, req.Keys, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, dto.AISecretsResponse{
		Project:     req.Project,
		Environment: environment,
		Secrets:     secrets,
	})
}

// ListTools handles GET /api/v1/ai/tools
func (h *AIHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": toolDefinitions()})
}

// CallTool handles POST /api/v1/ai/tools/call
func (h *AIHandler) CallTool(c *gin.Context) {
	var req dto.ToolCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	name, err := service.ParseToolName(req.Name)
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	// Mutating tools need the write scope, reading tools need read
	requiredScope := constants.ScopeRead
	if name == service.ToolSetSecret || name == service.ToolDeleteSecret {
		requiredScope = constants.ScopeWrite
	}
	if principal, ok := middleware.GetPrincipalFromContext(c); ok && !principal.HasScope(requiredScope) {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(403, "Forbidden",
			"API key lacks required scope: "+requiredScope))
		return
	}

	result, err := h.toolService.Dispatch(&req, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportOpenAIFunctions handles GET /api/v1/ai/openai/functions. The
// output is pasteable into an OpenAI-compatible tools array.
func (h *AIHandler) ExportOpenAIFunctions(c *gin.Context) {
	definitions := toolDefinitions()

	functions := make([]gin.H, 0, len(definitions))
	for _, def := range definitions {
		functions = append(functions, gin.H{
			"type": "function",
			"function": gin.H{
				"name":        def.Name,
				"description": def.Description,
				"parameters":  def.Parameters,
			},
		})
	}

	c.JSON(http.StatusOK, functions)
}

// toolDefinitions builds the JSON Schema parameter definitions for every
// dispatchable tool.
func toolDefinitions() []ToolDefinition {
	projectProp := openapi3.NewStringSchema()
	projectProp.Description = "Project name"
	envProp := openapi3.NewStringSchema()
	envProp.Description = "Environment name (defaults to development)"
	keyProp := openapi3.NewStringSchema()
	keyProp.Description = "Secret key, e.g. API_KEY"
	valueProp := openapi3.NewStringSchema()
	valueProp.Description = "Secret value to store"
	tagProp := openapi3.NewStringSchema()
	tagProp.Description = "Only list secrets carrying this tag"
	categoryProp := openapi3.NewStringSchema()
	categoryProp.Description = "Only list secrets in this category"

	targetSchema := func() *openapi3.Schema {
		s := openapi3.NewObjectSchema()
		s.WithProperty("project", projectProp)
		s.WithProperty("environment", envProp)
		return s
	}

	getSchema := targetSchema().WithProperty("key", keyProp)
	getSchema.Required = []string{"project", "key"}

	setSchema := targetSchema().WithProperty("key", keyProp).WithProperty("value", valueProp)
	setSchema.Required = []string{"project", "key", "value"}

	listSchema := targetSchema().WithProperty("tag", tagProp).WithProperty("category", categoryProp)
	listSchema.Required = []string{"project"}

	deleteSchema := targetSchema().WithProperty("key", keyProp)
	deleteSchema.Required = []string{"project", "key"}

	return []ToolDefinition{
		{
			Name:        string(service.ToolGetSecret),
			Description: "Retrieve the decrypted value of a secret",
			Parameters:  getSchema,
		},
		{
			Name:        string(service.ToolSetSecret),
			Description: "Store or update a secret value; previous values are archived",
			Parameters:  setSchema,
		},
		{
			Name:        string(service.ToolListSecrets),
			Description: "List secret keys in an environment without their values",
			Parameters:  listSchema,
		},
		{
			Name:        string(service.ToolDeleteSecret),
			Description: "Move a secret to trash (recoverable until purged)",
			Parameters:  deleteSchema,
		},
	}
}

// RegisterRoutes registers the AI-facing routes
func (h *AIHandler) RegisterRoutes(r *gin.Engine) {
	aiGroup := r.Group("/api/v1/ai")
	{
		aiGroup.POST("/secrets", middleware.RequireScope(constants.ScopeRead), h.GetSecrets)
		aiGroup.GET("/tools", h.ListTools)
		aiGroup.POST("/tools/call", h.CallTool)
		aiGroup.GET("/openai/functions", h.ExportOpenAIFunctions)
	}
}
