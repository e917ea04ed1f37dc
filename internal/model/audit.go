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

// AuditLogEntry is an append-only record of a vault access. Entries are
// never updated or deleted by normal operation.
type AuditLogEntry struct {
	ID           string            `json:"id" db:"id"`
	Timestamp    time.Time         `json:"timestamp" db:"timestamp"`
	Action       string            `json:"action" db:"action"`
	ResourceType string            `json:"resource_type" db:"resource_type"`
	ResourceID   string            `json:"resource_id,omitempty" db:"resource_id"`
	Actor        string            `json:"actor" db:"actor"`
	Details      map[string]string `json:"details" db:"details"` // stored as a JSON column
	IPAddress    string            `json:"ip_address,omitempty" db:"ip_address"`
}

// TableName returns the table name for the AuditLogEntry model
func (AuditLogEntry) TableName() string {
	return "audit_log"
}
