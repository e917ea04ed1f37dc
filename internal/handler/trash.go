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
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/service"
	"vault-api/src/internal/utils"
)

type TrashHandler struct {
	trashService *service.TrashService
}

func NewTrashHandler(trashService *service.TrashService) *TrashHandler {
	return &TrashHandler{
		trashService: trashService,
	}
}

// ListTrash handles GET /api/v1/trash
func (h *TrashHandler) ListTrash(c *gin.Context) {
	items, err := h.trashService.ListTrash()
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, items)
}

// RestoreSecret handles POST /api/v1/trash/:secretId/restore
func (h *TrashHandler) RestoreSecret(c *gin.Context) {
	if err := h.trashService.RestoreSecret(c.Param("secretId"), actorFrom(c)); err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// PurgeSecret handles DELETE /api/v1/trash/:secretId
func (h *TrashHandler) PurgeSecret(c *gin.Context) {
	if err := h.trashService.PurgeSecret(c.Param("secretId"), actorFrom(c)); err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// EmptyTrash handles DELETE /api/v1/trash
func (h *TrashHandler) EmptyTrash(c *gin.Context) {
	result, err := h.trashService.EmptyTrash(actorFrom(c))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers all trash routes
func (h *TrashHandler) RegisterRoutes(r *gin.Engine) {
	trashGroup := r.Group("/api/v1/trash")
	{
		trashGroup.GET("", middleware.RequireScope(constants.ScopeRead), h.ListTrash)
		trashGroup.POST("/:secretId/restore", middleware.RequireScope(constants.ScopeWrite), h.RestoreSecret)
		trashGroup.DELETE("/:secretId", middleware.RequireScope(constants.ScopeWrite), h.PurgeSecret)
		trashGroup.DELETE("", middleware.RequireScope(constants.ScopeAdmin), h.EmptyTrash)
	}
}
