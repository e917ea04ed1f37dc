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
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"vault-api/src/internal/database"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/repository"
	"vault-api/src/internal/service"

	_ "github.com/mattn/go-sqlite3"
)

const aiTestSchema = `
	CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE environments (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE(project_id, name)
	);
	CREATE TABLE secrets (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		environment_id TEXT NOT NULL REFERENCES environments(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		encrypted_value TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		tags TEXT NOT NULL DEFAULT '[]',
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'secret',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		created_by TEXT NOT NULL DEFAULT 'system',
		deleted_at TIMESTAMP
	);
	CREATE UNIQUE INDEX idx_secrets_live_key
		ON secrets(project_id, environment_id, key) WHERE deleted_at IS NULL;
	CREATE TABLE secret_versions (
		id TEXT PRIMARY KEY,
		secret_id TEXT NOT NULL REFERENCES secrets(id) ON DELETE CASCADE,
		version INTEGER NOT NULL,
		encrypted_value TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		created_by TEXT NOT NULL DEFAULT 'system'
	);
	CREATE TABLE audit_log (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT,
		actor TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '{}',
		ip_address TEXT
	);
`

// setupAIRouter builds the AI routes on an in-memory stack with a fixed
// bearer principal injected in place of the auth middleware.
func setupAIRouter(t *testing.T) (*gin.Engine, *service.ProjectService, *service.SecretService, *service.AuditService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "vault.db")
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}
	db := &database.DB{DB: sqlDB}
	if _, err := db.Exec(aiTestSchema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auditSvc := service.NewAuditService(repository.NewAuditRepo(db))
	projectRepo := repository.NewProjectRepo(db)
	projectSvc := service.NewProjectService(projectRepo, auditSvc)
	secretSvc := service.NewSecretService(projectRepo, repository.NewSecretRepo(db), auditSvc, "handler-test-key")
	toolSvc := service.NewToolService(secretSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("principal", &middleware.Principal{
			ID:         "test",
			Username:   "test",
			Role:       "admin",
			AuthMethod: "jwt",
		})
		c.Set("username", "test")
	})
	NewAIHandler(secretSvc, toolSvc).RegisterRoutes(r)
	return r, projectSvc, secretSvc, auditSvc
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAISecretsEndpoint(t *testing.T) {
	r, projectSvc, secretSvc, _ := setupAIRouter(t)

	if _, err := projectSvc.CreateProject(&dto.CreateProjectRequest{Name: "acme"}, service.Actor{Name: "test"}); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	seeds := map[string]string{"API_KEY": "sk-123", "DB_URL": "postgres://db"}
	for key, value := range seeds {
		if _, err := secretSvc.SetSecret("acme", "development", key,
			&dto.SetSecretRequest{Value: value}, service.Actor{Name: "test"}); err != nil {
			t.Fatalf("SetSecret failed: %v", err)
		}
	}

	w := postJSON(t, r, "/api/v1/ai/secrets", dto.AISecretsRequest{Project: "acme"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.AISecretsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Environment != "development" {
		t.Errorf("environment = %q, want default development", resp.Environment)
	}
	if resp.Secrets["API_KEY"] != "sk-123" || resp.Secrets["DB_URL"] != "postgres://db" {
		t.Errorf("secrets = %v, want both seeds decrypted", resp.Secrets)
	}

	// Selecting specific keys narrows the result
	w = postJSON(t, r, "/api/v1/ai/secrets", dto.AISecretsRequest{Project: "acme", Keys: []string{"API_KEY"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp = dto.AISecretsResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Secrets) != 1 {
		t.Errorf("selected secrets = %v, want only API_KEY", resp.Secrets)
	}

	// Requested keys that do not exist are dropped, not failed on
	w = postJSON(t, r, "/api/v1/ai/secrets", dto.AISecretsRequest{Project: "acme", Keys: []string{"API_KEY", "NO_SUCH_KEY"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp = dto.AISecretsResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Secrets) != 1 || resp.Secrets["API_KEY"] != "sk-123" {
		t.Errorf("secrets = %v, want the missing key left out", resp.Secrets)
	}

	// Unknown project is a 404 whose description names the valid projects
	w = postJSON(t, r, "/api/v1/ai/secrets", dto.AISecretsRequest{Project: "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("acme")) {
		t.Errorf("404 body %s does not name existing projects", w.Body.String())
	}
}

func TestToolCallEndpoint(t *testing.T) {
	r, projectSvc, _, auditSvc := setupAIRouter(t)
	if _, err := projectSvc.CreateProject(&dto.CreateProjectRequest{Name: "acme"}, service.Actor{Name: "test"}); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	// Round trip through set_secret and get_secret
	w := postJSON(t, r, "/api/v1/ai/tools/call", dto.ToolCallRequest{
		Name:      "set_secret",
		Arguments: map[string]string{"project": "acme", "key": "TOKEN", "value": "tok-1"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set_secret status = %d, body = %s", w.Code, w.Body.String())
	}

	w = postJSON(t, r, "/api/v1/ai/tools/call", dto.ToolCallRequest{
		Name:      "get_secret",
		Arguments: map[string]string{"project": "acme", "key": "TOKEN"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("get_secret status = %d, body = %s", w.Code, w.Body.String())
	}
	var result dto.ToolCallResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.IsError || result.Content[0].Text != "tok-1" {
		t.Errorf("get_secret result = %+v, want tok-1", result)
	}

	// The audit trail records the client address from the HTTP request
	log, err := auditSvc.Query(10, 0, "", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(log.Entries) == 0 || log.Entries[0].IPAddress != "192.0.2.1" {
		t.Errorf("latest audit entry = %+v, want client ip 192.0.2.1", log.Entries[0])
	}

	// Unknown tool names are rejected with a 400 listing the valid set
	w = postJSON(t, r, "/api/v1/ai/tools/call", dto.ToolCallRequest{Name: "exfiltrate_everything"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown tool status = %d, want 400", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("get_secret")) {
		t.Errorf("400 body %s does not list valid tools", w.Body.String())
	}
}

func TestToolDefinitionEndpoints(t *testing.T) {
	r, _, _, _ := setupAIRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai/tools", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("tools status = %d", w.Code)
	}
	var toolsResp struct {
		Tools []ToolDefinition `json:"tools"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &toolsResp); err != nil {
		t.Fatalf("Failed to decode tools: %v", err)
	}
	if len(toolsResp.Tools) != 4 {
		t.Errorf("tool definitions = %d, want 4", len(toolsResp.Tools))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai/openai/functions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("functions status = %d", w.Code)
	}
	var functions []struct {
		Type     string `json:"type"`
		Function struct {
			Name       string          `json:"name"`
			Parameters json.RawMessage `json:"parameters"`
		} `json:"function"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &functions); err != nil {
		t.Fatalf("Failed to decode functions: %v", err)
	}
	if len(functions) != 4 || functions[0].Type != "function" {
		t.Fatalf("functions = %+v, want 4 function entries", functions)
	}
	// Parameters carry a JSON Schema object with required fields
	var schema struct {
		Type     string   `json:"type"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(functions[0].Function.Parameters, &schema); err != nil {
		t.Fatalf("Failed to decode schema: %v", err)
	}
	if schema.Type != "object" || len(schema.Required) == 0 {
		t.Errorf("schema = %+v, want an object schema with required fields", schema)
	}
}
