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
	"time"

	"vault-api/src/internal/database"
	"vault-api/src/internal/model"
)

// AuditRepo implements AuditRepository
type AuditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new audit log repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &AuditRepo{db: db}
}

// LogAudit appends one entry to the audit log. The table is append-only:
// no update or delete path exists in this repository.
func (r *AuditRepo) LogAudit(entry *model.AuditLogEntry) error {
	entry.Timestamp = time.Now()
	if entry.Details == nil {
		entry.Details = map[string]string{}
	}
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
		INSERT INTO audit_log (id, timestamp, action, resource_type, resource_id, actor, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	var resourceID, ipAddress interface{}
	if entry.ResourceID != "" {
		resourceID = entry.ResourceID
	}
	if entry.IPAddress != "" {
		ipAddress = entry.IPAddress
	}
	_, err = r.db.Exec(query, entry.ID, entry.Timestamp, entry.Action, entry.ResourceType,
		resourceID, entry.Actor, string(detailsJSON), ipAddress)
	return err
}

// GetAuditLog retrieves entries newest first with limit/offset pagination
// and optional action and resource type filters.
func (r *AuditRepo) GetAuditLog(limit, offset int, action, resourceType string) ([]*model.AuditLogEntry, error) {
	query := `
		SELECT id, timestamp, action, resource_type, resource_id, actor, details, ip_address
		FROM audit_log
		WHERE 1 = 1
	`
	args := []interface{}{}
	if action != "" {
		query += ` AND action = ?`
		args = append(args, action)
	}
	if resourceType != "" {
		query += ` AND resource_type = ?`
		args = append(args, resourceType)
	}
	query += ` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.Query(r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.AuditLogEntry
	for rows.Next() {
		entry := &model.AuditLogEntry{}
		var resourceID, ipAddress sql.NullString
		var detailsJSON string

		err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Action, &entry.ResourceType,
			&resourceID, &entry.Actor, &detailsJSON, &ipAddress)
		if err != nil {
			return nil, err
		}
		entry.ResourceID = resourceID.String
		entry.IPAddress = ipAddress.String
		if err := json.Unmarshal([]byte(detailsJSON), &entry.Details); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
