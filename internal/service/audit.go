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

package service

import (
	"fmt"

	"github.com/google/uuid"

	"vault-api/src/internal/dto"
	"vault-api/src/internal/model"
	"vault-api/src/internal/repository"
	"vault-api/src/internal/utils"
)

// AuditNotifier receives every successfully recorded audit entry, e.g.
// to fan it out to live subscribers.
type AuditNotifier interface {
	NotifyAudit(entry *model.AuditLogEntry)
}

// Actor identifies who performed an operation and from where. Handlers
// fill IP from the client address; non-HTTP callers (MCP, the sweeper)
// leave it empty.
type Actor struct {
	Name string
	IP   string
}

type AuditService struct {
	auditRepo repository.AuditRepository
	notifier  AuditNotifier
}

func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
	}
}

// SetNotifier attaches a live subscriber sink. Must be called before the
// server starts handling requests.
func (s *AuditService) SetNotifier(notifier AuditNotifier) {
	s.notifier = notifier
}

// Record appends an audit entry. Audit failures are logged but never
// propagated: a vault operation that succeeded must not be failed by its
// own paper trail.
func (s *AuditService) Record(action, resourceType, resourceID string, actor Actor, details map[string]string) {
	entry := &model.AuditLogEntry{
		ID:           uuid.New().String(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor.Name,
		IPAddress:    actor.IP,
		Details:      details,
	}

	if err := s.auditRepo.LogAudit(entry); err != nil {
		utils.LogWarning(fmt.Sprintf("Failed to record audit entry %s for %s: %v", action, actor.Name, err))
		return
	}

	if s.notifier != nil {
		s.notifier.NotifyAudit(entry)
	}
}

// Query returns audit entries newest first, optionally filtered by
// action and resource type.
func (s *AuditService) Query(limit, offset int, action, resourceType string) (*dto.AuditLogResponse, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.auditRepo.GetAuditLog(limit, offset, action, resourceType)
	if err != nil {
		return nil, err
	}

	return &dto.AuditLogResponse{
		Entries: entries,
		Limit:   limit,
		Offset:  offset,
	}, nil
}
