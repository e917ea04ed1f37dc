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

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// actorFrom identifies the caller of the current request for auditing
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{Name: "anonymous", IP: c.ClientIP()}
	if principal, ok := middleware.GetPrincipalFromContext(c); ok {
		actor.Name = principal.Username
	}
	return actor
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	project, err := h.projectService.CreateProject(&req, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects()
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /api/v1/projects/:projectName
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Param("projectName"))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /api/v1/projects/:projectName
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Param("projectName"), actorFrom(c)); err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateEnvironment handles POST /api/v1/projects/:projectName/environments
func (h *ProjectHandler) CreateEnvironment(c *gin.Context) {
	var req dto.CreateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", utils.FormatValidationError(err)))
		return
	}

	env, err := h.projectService.CreateEnvironment(c.Param("projectName"), &req, actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, env)
}

// ListEnvironments handles GET /api/v1/projects/:projectName/environments
func (h *ProjectHandler) ListEnvironments(c *gin.Context) {
	environments, err := h.projectService.ListEnvironments(c.Param("projectName"))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, environments)
}

// RegisterRoutes registers all project routes
func (h *ProjectHandler) RegisterRoutes(r *gin.Engine) {
	projectGroup := r.Group("/api/v1/projects")
	{
		projectGroup.POST("", middleware.RequireScope(constants.ScopeWrite), h.CreateProject)
		projectGroup.GET("", middleware.RequireScope(constants.ScopeRead), h.ListProjects)
		projectGroup.GET("/:projectName", middleware.RequireScope(constants.ScopeRead), h.GetProject)
		projectGroup.DELETE("/:projectName", middleware.RequireScope(constants.ScopeWrite), h.DeleteProject)
		projectGroup.POST("/:projectName/environments", middleware.RequireScope(constants.ScopeWrite), h.CreateEnvironment)
		projectGroup.GET("/:projectName/environments", middleware.RequireScope(constants.ScopeRead), h.ListEnvironments)
	}
}
