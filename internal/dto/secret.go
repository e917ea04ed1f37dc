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

package dto

import (
	"time"
)

// Secret represents a secret with its decrypted value. Returned only by
// single-item get; list endpoints return SecretMetadata.
type Secret struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Version     int       `json:"version"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
}

// SecretMetadata is a secret listing entry without the value
type SecretMetadata struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Version     int       `json:"version"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
}

// SetSecretRequest is the payload for creating or updating a secret
type SetSecretRequest struct {
	Value       string   `json:"value" binding:"required,min=1"`
	Description string   `json:"description" binding:"max=500"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category" binding:"max=50"`
}

// BulkSecretEntry is one entry of a bulk write
type BulkSecretEntry struct {
	Key         string   `json:"key" binding:"required,min=1,max=200"`
	Value       string   `json:"value" binding:"required,min=1"`
	Description string   `json:"description" binding:"max=500"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category" binding:"max=50"`
}

// BulkSetSecretsRequest is the payload for writing multiple secrets at once
type BulkSetSecretsRequest struct {
	Secrets []BulkSecretEntry `json:"secrets" binding:"required,min=1,max=100,dive"`
}

// SetSecretResponse reports the outcome of a write
type SetSecretResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BulkSetSecretsResponse reports the outcome of a bulk write
type BulkSetSecretsResponse struct {
	Created int                  `json:"created"`
	Secrets []*SetSecretResponse `json:"secrets"`
}

// SecretVersionInfo describes one archived version; values are never included
type SecretVersionInfo struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// SecretVersionsResponse is the version history of a secret, newest first
type SecretVersionsResponse struct {
	Key            string               `json:"key"`
	CurrentVersion int                  `json:"current_version"`
	Versions       []*SecretVersionInfo `json:"versions"`
}

// TrashItem represents a soft-deleted secret in trash listings
type TrashItem struct {
	ID              string    `json:"id"`
	Key             string    `json:"key"`
	Version         int       `json:"version"`
	Description     string    `json:"description"`
	Tags            []string  `json:"tags"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DeletedAt       time.Time `json:"deleted_at"`
	ProjectID       string    `json:"project_id"`
	ProjectName     string    `json:"project_name"`
	EnvironmentName string    `json:"environment_name"`
}

// EmptyTrashResponse reports how many items a purge removed
type EmptyTrashResponse struct {
	Purged int `json:"purged"`
}
