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
	"strconv"

	"github.com/gin-gonic/gin"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/service"
	"vault-api/src/internal/utils"
)

type AuditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// GetAuditLog handles GET /api/v1/audit
func (h *AuditHandler) GetAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	log, err := h.auditService.Query(limit, offset, c.Query("action"), c.Query("resource_type"))
	if err != nil {
		c.JSON(utils.GetErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, log)
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/audit", middleware.RequireScope(constants.ScopeAdmin), h.GetAuditLog)
}
