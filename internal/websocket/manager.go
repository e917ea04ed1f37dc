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
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"vault-api/src/internal/model"
	"vault-api/src/internal/utils"
)

// Manager maintains the registry of live audit stream subscribers and
// fans recorded audit entries out to them. Subscribers are read-only:
// the vault never accepts commands over the stream.
type Manager struct {
	// connections maps connectionID -> *Connection
	connections sync.Map

	// mu protects connectionCount
	mu sync.RWMutex

	connectionCount int
	maxConnections  int

	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration

	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	// wg tracks connection writer goroutines for graceful shutdown
	wg sync.WaitGroup
}

// ManagerConfig contains configuration parameters for the subscriber manager
type ManagerConfig struct {
	MaxConnections    int           // Maximum concurrent subscribers (default 100)
	HeartbeatInterval time.Duration // Ping interval (default 20s)
	HeartbeatTimeout  time.Duration // Pong timeout (default 30s)
}

// DefaultManagerConfig returns sensible default configuration values
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxConnections:    100,
		HeartbeatInterval: 20 * time.Second,
		HeartbeatTimeout:  30 * time.Second,
	}
}

// NewManager creates a new subscriber manager with the provided configuration
func NewManager(config ManagerConfig) *Manager {
	if config.MaxConnections <= 0 {
		config.MaxConnections = 100
	}
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 20 * time.Second
	}
	if config.HeartbeatTimeout <= 0 {
		config.HeartbeatTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		maxConnections:    config.MaxConnections,
		heartbeatInterval: config.HeartbeatInterval,
		heartbeatTimeout:  config.HeartbeatTimeout,
		shutdownCtx:       ctx,
		shutdownFn:        cancel,
	}
}

// Register adds a subscriber connection and starts its writer and reader
// goroutines. Fails when the subscriber limit is reached.
func (m *Manager) Register(conn *Connection) error {
	m.mu.Lock()
	if m.connectionCount >= m.maxConnections {
		m.mu.Unlock()
		return ErrMaxConnectionsReached
	}
	m.connectionCount++
	m.mu.Unlock()

	conn.id = uuid.New().String()
	m.connections.Store(conn.id, conn)

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		conn.writeLoop(m.shutdownCtx, m.heartbeatInterval)
		m.unregister(conn)
	}()
	go func() {
		defer m.wg.Done()
		conn.readLoop(m.heartbeatTimeout)
	}()

	utils.LogInfo(fmt.Sprintf("Audit stream subscriber %s connected (%d active)", conn.id, m.ConnectionCount()))
	return nil
}

// unregister removes a connection from the registry if still present
func (m *Manager) unregister(conn *Connection) {
	if _, loaded := m.connections.LoadAndDelete(conn.id); !loaded {
		return
	}
	conn.close()

	m.mu.Lock()
	m.connectionCount--
	m.mu.Unlock()

	utils.LogInfo(fmt.Sprintf("Audit stream subscriber %s disconnected (%d active)", conn.id, m.ConnectionCount()))
}

// ConnectionCount returns the number of active subscribers
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectionCount
}

// NotifyAudit broadcasts a recorded audit entry to every subscriber.
// Slow subscribers are disconnected rather than allowed to block the
// audit path.
func (m *Manager) NotifyAudit(entry *model.AuditLogEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		utils.LogError("Failed to encode audit entry for broadcast", err)
		return
	}

	m.connections.Range(func(_, value any) bool {
		conn := value.(*Connection)
		select {
		case conn.send <- payload:
		default:
			utils.LogWarning(fmt.Sprintf("Dropping slow audit stream subscriber %s", conn.id))
			m.unregister(conn)
		}
		return true
	})
}

// Shutdown closes all subscriber connections and waits for their
// goroutines to finish.
func (m *Manager) Shutdown() {
	m.shutdownFn()
	m.connections.Range(func(_, value any) bool {
		m.unregister(value.(*Connection))
		return true
	})
	m.wg.Wait()
}
