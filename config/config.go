/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
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

package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Server holds the configuration parameters for the application.
type Server struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"DEBUG"`

	// Server configurations
	Port string `envconfig:"PORT" default:"8900"`

	// DataDir is the base directory for the database, key files and
	// generated TLS certificates.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// Database configurations
	Database     Database `envconfig:"DATABASE"`
	DBSchemaPath string   `envconfig:"DB_SCHEMA_PATH" default:"./internal/database/schema.sql"`

	// Security configurations (master key, dev mode)
	Security Security `envconfig:"SECURITY"`

	// JWT Authentication configurations
	JWT JWT `envconfig:"JWT"`

	// Trash retention configurations
	Trash Trash `envconfig:"TRASH"`

	// WebSocket configurations (audit event stream)
	WebSocket WebSocket `envconfig:"WEBSOCKET"`

	// TLS configurations
	TLS TLS `envconfig:"TLS"`
}

// TLS holds TLS certificate configuration
type TLS struct {
	CertDir string `envconfig:"CERT_DIR" default:"./data/certs"`
}

// Security holds master key and development-mode configuration
type Security struct {
	// MasterKey is the process-wide encryption secret. When empty, a key
	// is loaded from (or generated into) MasterKeyFile under DataDir.
	// Never logged, never returned in any response.
	MasterKey     string `envconfig:"MASTER_KEY" default:""`
	MasterKeyFile string `envconfig:"MASTER_KEY_FILE" default:"master.key"`

	// DevMode skips authentication entirely and yields a fixed admin
	// principal. Loudly opt-in: never enable in a hardened deployment.
	DevMode bool `envconfig:"DEV_MODE" default:"false"`
}

// JWT holds JWT-specific configuration
type JWT struct {
	// SecretKey signs bearer tokens (HS256). When empty, a secret is
	// loaded from (or generated into) SecretKeyFile under DataDir.
	SecretKey     string `envconfig:"SECRET_KEY" default:""`
	SecretKeyFile string `envconfig:"SECRET_KEY_FILE" default:"jwt.key"`
	Issuer        string `envconfig:"ISSUER" default:"vault-api"`
	ExpireMinutes int    `envconfig:"EXPIRE_MINUTES" default:"60"`
}

// Trash holds soft-delete retention configuration
type Trash struct {
	// MaxAgeDays is the retention window for trashed secrets before the
	// sweep removes them permanently.
	MaxAgeDays int `envconfig:"MAX_AGE_DAYS" default:"30"`
	// SweepSchedule is a cron expression for the trash-expiry sweep.
	SweepSchedule string `envconfig:"SWEEP_SCHEDULE" default:"0 3 * * *"`
	// SweepEnabled toggles the background sweep.
	SweepEnabled bool `envconfig:"SWEEP_ENABLED" default:"true"`
}

// WebSocket holds WebSocket-specific configuration
type WebSocket struct {
	MaxConnections    int `envconfig:"WS_MAX_CONNECTIONS" default:"100"`
	ConnectionTimeout int `envconfig:"WS_CONNECTION_TIMEOUT" default:"30"` // seconds
}

// Database holds database-specific configuration
type Database struct {
	Driver string `envconfig:"DRIVER" default:"sqlite3"`
	// Path is the file path for SQLite databases.
	// Use DATABASE_DB_PATH to override; keeping it distinct from the OS PATH variable.
	Path            string `envconfig:"DB_PATH" default:"./data/vault.db"`
	Host            string `envconfig:"HOST" default:"localhost"`
	Port            int    `envconfig:"PORT" default:"5432"`
	Name            string `envconfig:"NAME" default:"vault_api"`
	User            string `envconfig:"USER" default:""`
	Password        string `envconfig:"PASSWORD" default:""`
	SSLMode         string `envconfig:"SSL_MODE" default:"disable"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME" default:"300"` // seconds

	// ExecuteSchemaDDL controls whether to run the schema DDL (CREATE TABLE, etc.) on startup.
	// Set to false when the DB user lacks DDL privileges (e.g. deployed Postgres with restricted role).
	// Env: DATABASE_EXECUTE_SCHEMA_DDL (default: true)
	ExecuteSchemaDDL bool `envconfig:"EXECUTE_SCHEMA_DDL" default:"true"`
}

// MasterKeyPath returns the absolute location of the master key file.
func (s *Server) MasterKeyPath() string {
	return filepath.Join(s.DataDir, s.Security.MasterKeyFile)
}

// JWTSecretPath returns the absolute location of the JWT signing key file.
func (s *Server) JWTSecretPath() string {
	return filepath.Join(s.DataDir, s.JWT.SecretKeyFile)
}

// package-level variable and mutex for thread safety
var (
	processOnce     sync.Once
	settingInstance *Server
)

// GetConfig initializes and returns a singleton instance of the Server
// configuration. It uses sync.Once so the environment is processed only
// once, making it safe for concurrent use. If initialization fails, the
// function panics.
func GetConfig() *Server {
	var err error
	processOnce.Do(func() {
		settingInstance = &Server{}
		err = envconfig.Process("", settingInstance)
		if err == nil {
			err = validateConfig(settingInstance)
		}
	})
	if err != nil {
		panic(err)
	}
	return settingInstance
}

// validateConfig rejects configurations the server cannot start with.
func validateConfig(cfg *Server) error {
	if cfg.JWT.ExpireMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRE_MINUTES must be positive, got %d", cfg.JWT.ExpireMinutes)
	}
	if cfg.Trash.MaxAgeDays < 0 {
		return fmt.Errorf("TRASH_MAX_AGE_DAYS cannot be negative, got %d", cfg.Trash.MaxAgeDays)
	}
	if cfg.Database.Driver == "sqlite3" && cfg.Database.Path == "" {
		return fmt.Errorf("DATABASE_DB_PATH is required for the sqlite3 driver")
	}
	return nil
}
