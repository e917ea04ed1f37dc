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
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"vault-api/src/internal/database"
	"vault-api/src/internal/model"
)

// SecretRepo implements SecretRepository
type SecretRepo struct {
	db *database.DB
}

// NewSecretRepo creates a new secret repository
func NewSecretRepo(db *database.DB) SecretRepository {
	return &SecretRepo{db: db}
}

// encodeStrings serializes a string slice into its JSON column form.
func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeStrings parses a JSON column back into a string slice.
func decodeStrings(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// SetSecret creates or overwrites a secret in one transaction. If a live
// secret exists for (project, environment, key), its current ciphertext
// and version are archived into secret_versions before the row is
// overwritten at version+1; otherwise the secret is inserted at version 1.
// The secrets row always holds the latest value, secret_versions only
// superseded ones. Concurrent writers to the same key serialize on the
// transaction, so the loser lands on top of the winner, never over it.
func (r *SecretRepo) SetSecret(secret *model.Secret) (*model.Secret, error) {
	now := time.Now()
	tagsJSON, err := encodeStrings(secret.Tags)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existingID, existingValue string
	var existingVersion int
	query := r.db.Rebind(`
		SELECT id, version, encrypted_value
		FROM secrets
		WHERE project_id = ? AND environment_id = ? AND key = ? AND deleted_at IS NULL
	`)
	err = tx.QueryRow(query, secret.ProjectID, secret.EnvironmentID, secret.Key).
		Scan(&existingID, &existingVersion, &existingValue)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		secret.Version = 1
		secret.CreatedAt = now
		secret.UpdatedAt = now
		insert := r.db.Rebind(`
			INSERT INTO secrets (id, project_id, environment_id, key, encrypted_value,
				version, tags, description, category, created_at, updated_at, created_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if _, err := tx.Exec(insert, secret.ID, secret.ProjectID, secret.EnvironmentID, secret.Key,
			secret.EncryptedValue, secret.Version, tagsJSON, secret.Description, secret.Category,
			secret.CreatedAt, secret.UpdatedAt, secret.CreatedBy); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		archive := r.db.Rebind(`
			INSERT INTO secret_versions (id, secret_id, version, encrypted_value, created_at, created_by)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if _, err := tx.Exec(archive, uuid.New().String(), existingID, existingVersion,
			existingValue, now, secret.CreatedBy); err != nil {
			return nil, err
		}

		secret.ID = existingID
		secret.Version = existingVersion + 1
		secret.UpdatedAt = now
		update := r.db.Rebind(`
			UPDATE secrets
			SET encrypted_value = ?, version = ?, tags = ?, description = ?, category = ?,
				updated_at = ?, created_by = ?
			WHERE id = ?
		`)
		if _, err := tx.Exec(update, secret.EncryptedValue, secret.Version, tagsJSON,
			secret.Description, secret.Category, secret.UpdatedAt, secret.CreatedBy, secret.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return secret, nil
}

// GetSecretByKey retrieves a live secret including its ciphertext.
// Trashed rows never match.
func (r *SecretRepo) GetSecretByKey(projectID, environmentID, key string) (*model.Secret, error) {
	secret := &model.Secret{}
	var tagsJSON string
	var deletedAt sql.NullTime

	query := r.db.Rebind(`
		SELECT id, project_id, environment_id, key, encrypted_value, version, tags,
			description, category, created_at, updated_at, created_by, deleted_at
		FROM secrets
		WHERE project_id = ? AND environment_id = ? AND key = ? AND deleted_at IS NULL
	`)
	err := r.db.QueryRow(query, projectID, environmentID, key).Scan(
		&secret.ID, &secret.ProjectID, &secret.EnvironmentID, &secret.Key, &secret.EncryptedValue,
		&secret.Version, &tagsJSON, &secret.Description, &secret.Category,
		&secret.CreatedAt, &secret.UpdatedAt, &secret.CreatedBy, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if secret.Tags, err = decodeStrings(tagsJSON); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		secret.DeletedAt = &deletedAt.Time
	}
	return secret, nil
}

// ListSecrets retrieves live secrets of an environment ordered by key.
// Ciphertext is deliberately not selected: list results never carry
// values. A non-empty tag filters by membership, category by equality.
func (r *SecretRepo) ListSecrets(projectID, environmentID, tag, category string) ([]*model.Secret, error) {
	query := `
		SELECT id, project_id, environment_id, key, version, tags, description,
			category, created_at, updated_at, created_by
		FROM secrets
		WHERE project_id = ? AND environment_id = ? AND deleted_at IS NULL
	`
	args := []interface{}{projectID, environmentID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY key`

	rows, err := r.db.Query(r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var secrets []*model.Secret
	for rows.Next() {
		secret := &model.Secret{}
		var tagsJSON string
		err := rows.Scan(&secret.ID, &secret.ProjectID, &secret.EnvironmentID, &secret.Key,
			&secret.Version, &tagsJSON, &secret.Description, &secret.Category,
			&secret.CreatedAt, &secret.UpdatedAt, &secret.CreatedBy)
		if err != nil {
			return nil, err
		}
		if secret.Tags, err = decodeStrings(tagsJSON); err != nil {
			return nil, err
		}
		if tag != "" && !contains(secret.Tags, tag) {
			continue
		}
		secrets = append(secrets, secret)
	}

	return secrets, rows.Err()
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// DeleteSecret soft-deletes a live secret by setting deleted_at. A second
// call on an already-trashed secret matches no row and returns false.
func (r *SecretRepo) DeleteSecret(projectID, environmentID, key string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE secrets SET deleted_at = ?
		WHERE project_id = ? AND environment_id = ? AND key = ? AND deleted_at IS NULL
	`)
	result, err := r.db.Exec(query, time.Now(), projectID, environmentID, key)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListTrash retrieves all soft-deleted secrets across all projects,
// most recently deleted first.
func (r *SecretRepo) ListTrash() ([]*model.TrashItem, error) {
	query := `
		SELECT s.id, s.project_id, s.environment_id, s.key, s.version, s.tags,
			s.description, s.category, s.created_at, s.updated_at, s.created_by,
			s.deleted_at, p.name AS project_name, e.name AS environment_name
		FROM secrets s
		JOIN projects p ON p.id = s.project_id
		JOIN environments e ON e.id = s.environment_id
		WHERE s.deleted_at IS NOT NULL
		ORDER BY s.deleted_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.TrashItem
	for rows.Next() {
		item := &model.TrashItem{}
		var tagsJSON string
		var deletedAt time.Time
		err := rows.Scan(&item.ID, &item.ProjectID, &item.EnvironmentID, &item.Key,
			&item.Version, &tagsJSON, &item.Description, &item.Category,
			&item.CreatedAt, &item.UpdatedAt, &item.CreatedBy,
			&deletedAt, &item.ProjectName, &item.EnvironmentName)
		if err != nil {
			return nil, err
		}
		if item.Tags, err = decodeStrings(tagsJSON); err != nil {
			return nil, err
		}
		item.DeletedAt = &deletedAt
		items = append(items, item)
	}

	return items, rows.Err()
}

// RestoreSecret clears deleted_at on a trashed secret, making it live
// again with version and value unchanged. Returns false when the row is
// not currently trashed.
func (r *SecretRepo) RestoreSecret(secretID string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE secrets SET deleted_at = NULL
		WHERE id = ? AND deleted_at IS NOT NULL
	`)
	result, err := r.db.Exec(query, secretID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// PurgeSecret hard-deletes a trashed secret; the version chain goes with
// it via FK cascade. Live secrets are never purged directly: hard
// deletion always passes through trash.
func (r *SecretRepo) PurgeSecret(secretID string) (bool, error) {
	query := r.db.Rebind(`
		DELETE FROM secrets
		WHERE id = ? AND deleted_at IS NOT NULL
	`)
	result, err := r.db.Exec(query, secretID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// PurgeExpiredTrash hard-deletes all trashed secrets deleted earlier than
// maxAge ago. A zero maxAge empties the trash entirely. Safe to re-run at
// any time; deleting already-gone rows is a no-op.
func (r *SecretRepo) PurgeExpiredTrash(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	query := r.db.Rebind(`
		DELETE FROM secrets
		WHERE deleted_at IS NOT NULL AND deleted_at < ?
	`)
	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// GetSecretVersions retrieves the archived version chain of a secret,
// newest first. Ciphertext stays inside the store; callers only see
// version metadata.
func (r *SecretRepo) GetSecretVersions(secretID string) ([]*model.SecretVersion, error) {
	query := r.db.Rebind(`
		SELECT id, secret_id, version, encrypted_value, created_at, created_by
		FROM secret_versions
		WHERE secret_id = ?
		ORDER BY version DESC
	`)
	rows, err := r.db.Query(query, secretID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*model.SecretVersion
	for rows.Next() {
		v := &model.SecretVersion{}
		err := rows.Scan(&v.ID, &v.SecretID, &v.Version, &v.EncryptedValue, &v.CreatedAt, &v.CreatedBy)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}
