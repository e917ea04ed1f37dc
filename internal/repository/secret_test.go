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

package repository

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"vault-api/src/internal/database"
	"vault-api/src/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a temporary SQLite database for testing
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	db := &database.DB{DB: sqlDB}
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestSchema creates the vault schema required for secret tests
func createTestSchema(db *database.DB) error {
	schema := `
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
	`
	_, err := db.Exec(schema)
	return err
}

// seedProjectEnv inserts a project with one environment and returns their IDs
func seedProjectEnv(t *testing.T, db *database.DB, projectName, envName string) (string, string) {
	t.Helper()

	projectID := uuid.New().String()
	envID := uuid.New().String()
	now := time.Now()

	_, err := db.Exec(`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		projectID, projectName, now, now)
	if err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	_, err = db.Exec(`INSERT INTO environments (id, project_id, name, created_at) VALUES (?, ?, ?, ?)`,
		envID, projectID, envName, now)
	if err != nil {
		t.Fatalf("Failed to seed environment: %v", err)
	}
	return projectID, envID
}

func newTestSecret(projectID, envID, key, ciphertext string) *model.Secret {
	return &model.Secret{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		EnvironmentID:  envID,
		Key:            key,
		EncryptedValue: ciphertext,
		Category:       "secret",
		CreatedBy:      "tester",
	}
}

func TestSetSecretVersionChain(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	projectID, envID := seedProjectEnv(t, db, "acme", "development")

	// Write the same key N times; the row must end at version N with
	// N-1 archived versions holding the superseded ciphertexts.
	const writes = 5
	var lastID string
	for i := 1; i <= writes; i++ {
		secret := newTestSecret(projectID, envID, "API_KEY", fmt.Sprintf("ciphertext-%d", i))
		result, err := repo.SetSecret(secret)
		if err != nil {
			t.Fatalf("SetSecret write %d failed: %v", i, err)
		}
		if result.Version != i {
			t.Errorf("write %d: version = %d, want %d", i, result.Version, i)
		}
		if lastID != "" && result.ID != lastID {
			t.Errorf("write %d: secret identity changed from %s to %s", i, lastID, result.ID)
		}
		lastID = result.ID
	}

	current, err := repo.GetSecretByKey(projectID, envID, "API_KEY")
	if err != nil {
		t.Fatalf("GetSecretByKey failed: %v", err)
	}
	if current == nil {
		t.Fatal("secret not found after writes")
	}
	if current.Version != writes {
		t.Errorf("current version = %d, want %d", current.Version, writes)
	}
	if current.EncryptedValue != fmt.Sprintf("ciphertext-%d", writes) {
		t.Errorf("current ciphertext = %q, want latest", current.EncryptedValue)
	}

	versions, err := repo.GetSecretVersions(current.ID)
	if err != nil {
		t.Fatalf("GetSecretVersions failed: %v", err)
	}
	if len(versions) != writes-1 {
		t.Fatalf("archived versions = %d, want %d", len(versions), writes-1)
	}
	// Newest first: version N-1 down to 1, each holding the ciphertext
	// that was current just before it was superseded.
	for i, v := range versions {
		wantVersion := writes - 1 - i
		if v.Version != wantVersion {
			t.Errorf("versions[%d].Version = %d, want %d", i, v.Version, wantVersion)
		}
		if v.EncryptedValue != fmt.Sprintf("ciphertext-%d", wantVersion) {
			t.Errorf("versions[%d] ciphertext = %q, want ciphertext-%d", i, v.EncryptedValue, wantVersion)
		}
	}
}

func TestSoftDeleteAndRecreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	projectID, envID := seedProjectEnv(t, db, "acme", "development")

	first, err := repo.SetSecret(newTestSecret(projectID, envID, "DB_URL", "ct-1"))
	if err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}

	deleted, err := repo.DeleteSecret(projectID, envID, "DB_URL")
	if err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}
	if !deleted {
		t.Fatal("DeleteSecret reported no row deleted")
	}

	// Deleting again matches no live row
	deleted, err = repo.DeleteSecret(projectID, envID, "DB_URL")
	if err != nil {
		t.Fatalf("second DeleteSecret failed: %v", err)
	}
	if deleted {
		t.Error("second DeleteSecret unexpectedly matched a row")
	}

	// Invisible to live lookups
	got, err := repo.GetSecretByKey(projectID, envID, "DB_URL")
	if err != nil {
		t.Fatalf("GetSecretByKey failed: %v", err)
	}
	if got != nil {
		t.Error("trashed secret still visible to GetSecretByKey")
	}

	// A soft-deleted secret does not block re-creation: the new write is
	// a fresh entity at version 1.
	second, err := repo.SetSecret(newTestSecret(projectID, envID, "DB_URL", "ct-2"))
	if err != nil {
		t.Fatalf("SetSecret after soft delete failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("re-created secret reused the trashed entity")
	}
	if second.Version != 1 {
		t.Errorf("re-created secret version = %d, want 1", second.Version)
	}

	// Both the trashed original and the new live secret exist
	trash, err := repo.ListTrash()
	if err != nil {
		t.Fatalf("ListTrash failed: %v", err)
	}
	if len(trash) != 1 || trash[0].ID != first.ID {
		t.Errorf("trash = %+v, want exactly the original secret", trash)
	}
}

func TestTrashLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	projectID, envID := seedProjectEnv(t, db, "acme", "production")

	secret, err := repo.SetSecret(newTestSecret(projectID, envID, "TOKEN", "ct-a"))
	if err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}
	if _, err := repo.SetSecret(newTestSecret(projectID, envID, "TOKEN", "ct-b")); err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}

	if _, err := repo.DeleteSecret(projectID, envID, "TOKEN"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}

	trash, err := repo.ListTrash()
	if err != nil {
		t.Fatalf("ListTrash failed: %v", err)
	}
	if len(trash) != 1 {
		t.Fatalf("trash length = %d, want 1", len(trash))
	}
	if trash[0].ProjectName != "acme" || trash[0].EnvironmentName != "production" {
		t.Errorf("trash item names = %s/%s, want acme/production", trash[0].ProjectName, trash[0].EnvironmentName)
	}

	// Restore: live again with version and value unchanged
	restored, err := repo.RestoreSecret(secret.ID)
	if err != nil {
		t.Fatalf("RestoreSecret failed: %v", err)
	}
	if !restored {
		t.Fatal("RestoreSecret reported no row restored")
	}

	live, err := repo.GetSecretByKey(projectID, envID, "TOKEN")
	if err != nil {
		t.Fatalf("GetSecretByKey failed: %v", err)
	}
	if live == nil {
		t.Fatal("restored secret not visible")
	}
	if live.Version != 2 || live.EncryptedValue != "ct-b" {
		t.Errorf("restored secret = v%d %q, want v2 ct-b", live.Version, live.EncryptedValue)
	}

	// Restoring a live secret is rejected
	restored, err = repo.RestoreSecret(secret.ID)
	if err != nil {
		t.Fatalf("RestoreSecret failed: %v", err)
	}
	if restored {
		t.Error("restoring a live secret unexpectedly succeeded")
	}

	// Purge requires the secret to be trashed first
	purged, err := repo.PurgeSecret(secret.ID)
	if err != nil {
		t.Fatalf("PurgeSecret failed: %v", err)
	}
	if purged {
		t.Error("purging a live secret unexpectedly succeeded")
	}

	if _, err := repo.DeleteSecret(projectID, envID, "TOKEN"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}
	purged, err = repo.PurgeSecret(secret.ID)
	if err != nil {
		t.Fatalf("PurgeSecret failed: %v", err)
	}
	if !purged {
		t.Fatal("PurgeSecret reported no row purged")
	}

	// Gone permanently, including the version chain (FK cascade)
	trash, err = repo.ListTrash()
	if err != nil {
		t.Fatalf("ListTrash failed: %v", err)
	}
	if len(trash) != 0 {
		t.Errorf("trash length after purge = %d, want 0", len(trash))
	}
	var versionCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM secret_versions WHERE secret_id = ?`, secret.ID).Scan(&versionCount); err != nil {
		t.Fatalf("counting versions failed: %v", err)
	}
	if versionCount != 0 {
		t.Errorf("version rows after purge = %d, want 0", versionCount)
	}
}

func TestPurgeExpiredTrash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	projectID, envID := seedProjectEnv(t, db, "acme", "staging")

	oldSecret, err := repo.SetSecret(newTestSecret(projectID, envID, "OLD", "ct"))
	if err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}
	freshSecret, err := repo.SetSecret(newTestSecret(projectID, envID, "FRESH", "ct"))
	if err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}

	if _, err := repo.DeleteSecret(projectID, envID, "OLD"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}
	if _, err := repo.DeleteSecret(projectID, envID, "FRESH"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}

	// Backdate one deletion beyond the retention window
	_, err = db.Exec(`UPDATE secrets SET deleted_at = ? WHERE id = ?`,
		time.Now().Add(-40*24*time.Hour), oldSecret.ID)
	if err != nil {
		t.Fatalf("backdating failed: %v", err)
	}

	purged, err := repo.PurgeExpiredTrash(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeExpiredTrash failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	trash, err := repo.ListTrash()
	if err != nil {
		t.Fatalf("ListTrash failed: %v", err)
	}
	if len(trash) != 1 || trash[0].ID != freshSecret.ID {
		t.Errorf("expected only the fresh secret to survive the sweep, got %+v", trash)
	}

	// Zero age empties the trash entirely
	purged, err = repo.PurgeExpiredTrash(0)
	if err != nil {
		t.Fatalf("PurgeExpiredTrash(0) failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("empty-trash purged = %d, want 1", purged)
	}
}

func TestListSecretsFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	projectID, envID := seedProjectEnv(t, db, "acme", "development")

	entries := []struct {
		key      string
		tags     []string
		category string
	}{
		{"API_KEY", []string{"auth", "external"}, "secret"},
		{"DB_URL", []string{"infra"}, "config"},
		{"SMTP_PASS", []string{"auth"}, "secret"},
	}
	for _, e := range entries {
		secret := newTestSecret(projectID, envID, e.key, "ct")
		secret.Tags = e.tags
		secret.Category = e.category
		if _, err := repo.SetSecret(secret); err != nil {
			t.Fatalf("SetSecret %s failed: %v", e.key, err)
		}
	}

	tests := []struct {
		name     string
		tag      string
		category string
		wantKeys []string
	}{
		{"no filter", "", "", []string{"API_KEY", "DB_URL", "SMTP_PASS"}},
		{"by tag", "auth", "", []string{"API_KEY", "SMTP_PASS"}},
		{"by category", "", "config", []string{"DB_URL"}},
		{"tag and category", "auth", "secret", []string{"API_KEY", "SMTP_PASS"}},
		{"no match", "missing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secrets, err := repo.ListSecrets(projectID, envID, tt.tag, tt.category)
			if err != nil {
				t.Fatalf("ListSecrets failed: %v", err)
			}
			var keys []string
			for _, s := range secrets {
				if s.EncryptedValue != "" {
					t.Errorf("list result for %s carries ciphertext", s.Key)
				}
				keys = append(keys, s.Key)
			}
			if fmt.Sprint(keys) != fmt.Sprint(tt.wantKeys) {
				t.Errorf("keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}
