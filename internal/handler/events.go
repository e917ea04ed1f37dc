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
	"errors"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"github.com/gin-gonic/gin"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/utils"
	"vault-api/src/internal/websocket"
)

// EventsHandler upgrades audit stream subscriptions to WebSocket
type EventsHandler struct {
	manager  *websocket.Manager
	upgrader gorilla.Upgrader
}

func NewEventsHandler(manager *websocket.Manager) *EventsHandler {
	return &EventsHandler{
		manager: manager,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Local-first deployment: browsers connect from arbitrary
			// dev-server origins, authentication happens via headers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StreamAudit handles GET /api/v1/ws/audit
func (h *EventsHandler) StreamAudit(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		utils.LogWarning("Audit stream upgrade failed: " + err.Error())
		return
	}

	conn := websocket.NewConnection(ws)
	if err := h.manager.Register(conn); err != nil {
		if errors.Is(err, websocket.ErrMaxConnectionsReached) {
			ws.WriteMessage(gorilla.CloseMessage,
				gorilla.FormatCloseMessage(gorilla.CloseTryAgainLater, "subscriber limit reached"))
		}
		ws.Close()
	}
}

// RegisterRoutes registers the audit stream route
func (h *EventsHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/ws/audit", middleware.RequireScope(constants.ScopeAdmin), h.StreamAudit)
}
