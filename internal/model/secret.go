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

package model

import (
	"time"
)

// Secret represents an encrypted key/value secret. The row always holds
// the latest ciphertext; superseded ciphertexts are archived as
// SecretVersion rows. A non-nil DeletedAt means the secret is in trash.
type Secret struct {
	ID             string     `json:"id" db:"id"`
	ProjectID      string     `json:"project_id" db:"project_id"`         // FK to Project.ID
	EnvironmentID  string     `json:"environment_id" db:"environment_id"` // FK to Environment.ID
	Key            string     `json:"key" db:"key"`
	EncryptedValue string     `json:"-" db:"encrypted_value"` // ciphertext envelope, never serialized
	Version        int        `json:"version" db:"version"`
	Tags           []string   `json:"tags" db:"tags"` // stored as a JSON column
	Description    string     `json:"description" db:"description"`
	Category       string     `json:"category" db:"category"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// TableName returns the table name for the Secret model
func (Secret) TableName() string {
	return "secrets"
}

// IsTrashed reports whether the secret is soft-deleted.
func (s *Secret) IsTrashed() bool {
	return s.DeletedAt != nil
}

// SecretVersion is an immutable snapshot of a superseded secret value.
// A secret at version N has exactly N-1 SecretVersion rows (1..N-1).
type SecretVersion struct {
	ID             string    `json:"id" db:"id"`
	SecretID       string    `json:"secret_id" db:"secret_id"` // FK to Secret.ID
	Version        int       `json:"version" db:"version"`
	EncryptedValue string    `json:"-" db:"encrypted_value"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
}

// TableName returns the table name for the SecretVersion model
func (SecretVersion) TableName() string {
	return "secret_versions"
}

// TrashItem is a trashed secret joined with its owning project and
// environment names for display.
type TrashItem struct {
	Secret
	ProjectName     string `json:"project_name" db:"project_name"`
	EnvironmentName string `json:"environment_name" db:"environment_name"`
}
