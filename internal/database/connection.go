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

package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vault-api/src/config"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// DB holds the database connection
type DB struct {
	*sql.DB
	driver string // Database driver name (sqlite3, postgres)
}

// Driver returns the underlying database driver name (e.g., sqlite3, postgres).
func (db *DB) Driver() string {
	return db.driver
}

// NewConnection creates a new database connection using configuration.
// The vault assumes a single running instance owns the storage file;
// concurrent multi-process access is not supported.
func NewConnection(cfg *config.Database) (*DB, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite3":
		// Ensure the directory exists for SQLite
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		db, err = sql.Open("sqlite3", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// WAL keeps readers from blocking the writer; foreign keys enforce
		// the Project -> Environment -> Secret -> SecretVersion cascade.
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	case "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
		)

		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// InitSchema initializes the database schema. The driver-specific schema
// file (schema.sqlite.sql or schema.postgres.sql) is resolved from the
// directory of dbSchemaPath.
func (db *DB) InitSchema(dbSchemaPath string) error {
	dir := "./internal/database"
	if dbSchemaPath != "" {
		dir = filepath.Dir(dbSchemaPath)
	}

	var schemaFile string
	switch db.driver {
	case "sqlite3":
		schemaFile = "schema.sqlite.sql"
	case "postgres", "postgresql":
		schemaFile = "schema.postgres.sql"
	default:
		return fmt.Errorf("unsupported database driver for schema initialization: %s", db.driver)
	}

	schemaPath := filepath.Join(dir, schemaFile)
	schemaSQL, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", schemaPath, err)
	}

	// The PostgreSQL driver does not handle multi-statement Exec well, so
	// statements are executed individually inside one transaction there.
	if db.driver == "postgres" || db.driver == "postgresql" {
		return db.initSchemaPostgres(string(schemaSQL))
	}

	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// initSchemaPostgres executes schema statements one by one in a single
// transaction so foreign key constraints are validated only at commit.
func (db *DB) initSchemaPostgres(schemaSQL string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitSQLStatements(schemaSQL) {
		if _, err := tx.Exec(stmt); err != nil {
			firstLine := stmt
			if idx := strings.Index(stmt, "\n"); idx > 0 {
				firstLine = stmt[:idx]
			}
			return fmt.Errorf("failed to execute schema statement %q: %w", firstLine, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// splitSQLStatements splits SQL on semicolons outside of string literals
// and drops pure comment lines.
func splitSQLStatements(schemaSQL string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for _, r := range schemaSQL {
		if r == '\'' {
			inString = !inString
		}
		if r == ';' && !inString {
			if stmt := cleanStatement(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if stmt := cleanStatement(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// cleanStatement strips comment-only lines and surrounding whitespace.
func cleanStatement(stmt string) string {
	var lines []string
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Rebind converts a SQL query with `?` placeholders to the appropriate
// format for the current driver. For PostgreSQL, `?` becomes `$1, $2, ...`;
// for SQLite the query is returned as-is.
func (db *DB) Rebind(query string) string {
	if db.driver != "postgres" && db.driver != "postgresql" {
		return query
	}

	parts := strings.Split(query, "?")
	if len(parts) == 1 {
		return query
	}

	var result strings.Builder
	for i, part := range parts {
		if i > 0 {
			fmt.Fprintf(&result, "$%d", i)
		}
		result.WriteString(part)
	}
	return result.String()
}
