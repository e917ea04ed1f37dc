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
	"time"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/repository"
)

type TrashService struct {
	secretRepo repository.SecretRepository
	auditSvc   *AuditService
}

func NewTrashService(secretRepo repository.SecretRepository, auditSvc *AuditService) *TrashService {
	return &TrashService{
		secretRepo: secretRepo,
		auditSvc:   auditSvc,
	}
}

// ListTrash returns all trashed secrets across projects, newest deletion
// first.
func (s *TrashService) ListTrash() ([]*dto.TrashItem, error) {
	items, err := s.secretRepo.ListTrash()
	if err != nil {
		return nil, err
	}

	list := make([]*dto.TrashItem, 0, len(items))
	for _, item := range items {
		entry := &dto.TrashItem{
			ID:              item.ID,
			Key:             item.Key,
			Version:         item.Version,
			Description:     item.Description,
			Tags:            item.Tags,
			Category:        item.Category,
			CreatedAt:       item.CreatedAt,
			UpdatedAt:       item.UpdatedAt,
			ProjectID:       item.ProjectID,
			ProjectName:     item.ProjectName,
			EnvironmentName: item.EnvironmentName,
		}
		if item.DeletedAt != nil {
			entry.DeletedAt = *item.DeletedAt
		}
		list = append(list, entry)
	}
	return list, nil
}

// RestoreSecret brings a trashed secret back to life with its value,
// version and history intact. Restoring fails if a live secret has since
// taken the same key.
func (s *TrashService) RestoreSecret(secretID string, actor Actor) error {
	restored, err := s.secretRepo.RestoreSecret(secretID)
	if err != nil {
		return err
	}
	if !restored {
		return constants.ErrTrashItemNotFound
	}

	s.auditSvc.Record(constants.ActionSecretRestore, constants.ResourceSecret, secretID, actor, nil)
	return nil
}

// PurgeSecret permanently removes a trashed secret and its version
// chain. Live secrets cannot be purged directly.
func (s *TrashService) PurgeSecret(secretID string, actor Actor) error {
	purged, err := s.secretRepo.PurgeSecret(secretID)
	if err != nil {
		return err
	}
	if !purged {
		return constants.ErrTrashItemNotFound
	}

	s.auditSvc.Record(constants.ActionSecretPurge, constants.ResourceSecret, secretID, actor, nil)
	return nil
}

// EmptyTrash permanently removes every trashed secret
func (s *TrashService) EmptyTrash(actor Actor) (*dto.EmptyTrashResponse, error) {
	purged, err := s.secretRepo.PurgeExpiredTrash(0)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionSecretEmptyTrash, constants.ResourceSecret, "", actor, map[string]string{
		"purged": fmt.Sprintf("%d", purged),
	})
	return &dto.EmptyTrashResponse{Purged: purged}, nil
}

// PurgeExpired removes trashed secrets older than the retention window.
// Used by the background sweeper.
func (s *TrashService) PurgeExpired(maxAge time.Duration) (int, error) {
	purged, err := s.secretRepo.PurgeExpiredTrash(maxAge)
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		s.auditSvc.Record(constants.ActionSecretPurge, constants.ResourceSecret, "", Actor{Name: "system"}, map[string]string{
			"purged": fmt.Sprintf("%d", purged),
			"reason": "retention_expired",
		})
	}
	return purged, nil
}
