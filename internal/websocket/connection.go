/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout  = 10 * time.Second
	sendQueueSize = 64
)

// Connection wraps one audit stream subscriber socket
type Connection struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

// NewConnection wraps an upgraded WebSocket connection
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
	}
}

// writeLoop delivers queued audit entries and heartbeat pings until the
// connection or the server shuts down.
func (c *Connection) writeLoop(ctx context.Context, heartbeatInterval time.Duration) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

// readLoop drains incoming frames to keep pong handling alive. The
// stream is one-way, so client payloads are discarded.
func (c *Connection) readLoop(heartbeatTimeout time.Duration) {
	c.ws.SetReadLimit(1024)
	c.ws.SetReadDeadline(time.Now().Add(heartbeatTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(heartbeatTimeout))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.close()
			return
		}
	}
}

// close shuts the socket down exactly once
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.ws.Close()
	})
}
