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
	"errors"
	"time"

	"vault-api/src/internal/database"
	"vault-api/src/internal/model"
)

// APIKeyRepo implements APIKeyRepository
type APIKeyRepo struct {
	db *database.DB
}

// NewAPIKeyRepo creates a new API key repository
func NewAPIKeyRepo(db *database.DB) APIKeyRepository {
	return &APIKeyRepo{db: db}
}

// CreateAPIKey inserts a new API key record. Only the hash is stored;
// the raw key never reaches this layer.
func (r *APIKeyRepo) CreateAPIKey(key *model.APIKey) error {
	key.CreatedAt = time.Now()
	key.IsActive = true

	scopesJSON, err := encodeStrings(key.Scopes)
	if err != nil {
		return err
	}
	projectIDsJSON, err := encodeStrings(key.ProjectIDs)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
		INSERT INTO api_keys (id, name, key_hash, scopes, project_ids, created_at, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	var expiresAt interface{}
	if key.ExpiresAt != nil {
		expiresAt = *key.ExpiresAt
	}
	_, err = r.db.Exec(query, key.ID, key.Name, key.KeyHash, scopesJSON, projectIDsJSON,
		key.CreatedAt, expiresAt, key.IsActive)
	return err
}

// GetAPIKeyByHash looks up an active API key by the hash of its raw value
func (r *APIKeyRepo) GetAPIKeyByHash(keyHash string) (*model.APIKey, error) {
	query := r.db.Rebind(`
		SELECT id, name, key_hash, scopes, project_ids, created_at, last_used_at, expires_at, is_active
		FROM api_keys
		WHERE key_hash = ? AND is_active = ?
	`)
	return r.scanAPIKey(r.db.QueryRow(query, keyHash, true))
}

func (r *APIKeyRepo) scanAPIKey(row *sql.Row) (*model.APIKey, error) {
	key := &model.APIKey{}
	var scopesJSON, projectIDsJSON string
	var lastUsedAt, expiresAt sql.NullTime

	err := row.Scan(&key.ID, &key.Name, &key.KeyHash, &scopesJSON, &projectIDsJSON,
		&key.CreatedAt, &lastUsedAt, &expiresAt, &key.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if key.Scopes, err = decodeStrings(scopesJSON); err != nil {
		return nil, err
	}
	if key.ProjectIDs, err = decodeStrings(projectIDsJSON); err != nil {
		return nil, err
	}
	if lastUsedAt.Valid {
		key.LastUsedAt = &lastUsedAt.Time
	}
	if expiresAt.Valid {
		key.ExpiresAt = &expiresAt.Time
	}
	return key, nil
}

// TouchLastUsed records a successful authentication with the key
func (r *APIKeyRepo) TouchLastUsed(id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`)
	_, err := r.db.Exec(query, at, id)
	return err
}

// ListAPIKeys retrieves all active API keys, newest first. Hashes are
// selected but raw key values do not exist anywhere to return.
func (r *APIKeyRepo) ListAPIKeys() ([]*model.APIKey, error) {
	query := r.db.Rebind(`
		SELECT id, name, key_hash, scopes, project_ids, created_at, last_used_at, expires_at, is_active
		FROM api_keys
		WHERE is_active = ?
		ORDER BY created_at DESC
	`)
	rows, err := r.db.Query(query, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*model.APIKey
	for rows.Next() {
		key := &model.APIKey{}
		var scopesJSON, projectIDsJSON string
		var lastUsedAt, expiresAt sql.NullTime

		err := rows.Scan(&key.ID, &key.Name, &key.KeyHash, &scopesJSON, &projectIDsJSON,
			&key.CreatedAt, &lastUsedAt, &expiresAt, &key.IsActive)
		if err != nil {
			return nil, err
		}
		if key.Scopes, err = decodeStrings(scopesJSON); err != nil {
			return nil, err
		}
		if key.ProjectIDs, err = decodeStrings(projectIDsJSON); err != nil {
			return nil, err
		}
		if lastUsedAt.Valid {
			key.LastUsedAt = &lastUsedAt.Time
		}
		if expiresAt.Valid {
			key.ExpiresAt = &expiresAt.Time
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// RevokeAPIKey deactivates a key without removing its record
func (r *APIKeyRepo) RevokeAPIKey(id string) (bool, error) {
	query := r.db.Rebind(`UPDATE api_keys SET is_active = ? WHERE id = ? AND is_active = ?`)
	result, err := r.db.Exec(query, false, id, true)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteAPIKey removes a key record entirely
func (r *APIKeyRepo) DeleteAPIKey(id string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM api_keys WHERE id = ?`)
	result, err := r.db.Exec(query, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
