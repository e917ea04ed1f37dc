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
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/crypto"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/model"
	"vault-api/src/internal/repository"
)

// secretKeyPattern matches environment-variable style keys
var secretKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]{0,199}$`)

// Export formats accepted by ExportSecrets
const (
	ExportFormatEnv  = "env"
	ExportFormatJSON = "json"
	ExportFormatYAML = "yaml"
)

type SecretService struct {
	projectRepo repository.ProjectRepository
	secretRepo  repository.SecretRepository
	auditSvc    *AuditService
	masterKey   string
}

func NewSecretService(projectRepo repository.ProjectRepository, secretRepo repository.SecretRepository,
	auditSvc *AuditService, masterKey string) *SecretService {
	return &SecretService{
		projectRepo: projectRepo,
		secretRepo:  secretRepo,
		auditSvc:    auditSvc,
		masterKey:   masterKey,
	}
}

// SetSecret encrypts and stores a secret value. Writing an existing key
// archives the previous ciphertext and bumps the version; the operation
// never destroys an old value.
func (s *SecretService) SetSecret(projectName, envName, key string, req *dto.SetSecretRequest, actor Actor) (*dto.SetSecretResponse, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return nil, err
	}

	if !secretKeyPattern.MatchString(key) {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidSecretKey, key)
	}
	if req.Value == "" {
		return nil, constants.ErrEmptySecretValue
	}

	envelope, err := crypto.Encrypt(req.Value, s.masterKey)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = "secret"
	}

	secret := &model.Secret{
		ID:             uuid.New().String(),
		ProjectID:      project.ID,
		EnvironmentID:  env.ID,
		Key:            key,
		EncryptedValue: envelope,
		Tags:           req.Tags,
		Description:    req.Description,
		Category:       category,
		CreatedBy:      actor.Name,
	}

	stored, err := s.secretRepo.SetSecret(secret)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionSecretWrite, constants.ResourceSecret, stored.ID, actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
		"key":         key,
		"version":     fmt.Sprintf("%d", stored.Version),
	})

	return &dto.SetSecretResponse{
		ID:        stored.ID,
		Key:       stored.Key,
		Version:   stored.Version,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// BulkSetSecrets writes multiple secrets in one call. Each entry follows
// the same versioning rules as a single write; entries are applied in
// order and the first failure aborts the remainder.
func (s *SecretService) BulkSetSecrets(projectName, envName string, req *dto.BulkSetSecretsRequest, actor Actor) (*dto.BulkSetSecretsResponse, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SetSecretResponse, 0, len(req.Secrets))
	for _, entry := range req.Secrets {
		if !secretKeyPattern.MatchString(entry.Key) {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidSecretKey, entry.Key)
		}
		if entry.Value == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrEmptySecretValue, entry.Key)
		}

		envelope, err := crypto.Encrypt(entry.Value, s.masterKey)
		if err != nil {
			return nil, err
		}

		category := entry.Category
		if category == "" {
			category = "secret"
		}

		stored, err := s.secretRepo.SetSecret(&model.Secret{
			ID:             uuid.New().String(),
			ProjectID:      project.ID,
			EnvironmentID:  env.ID,
			Key:            entry.Key,
			EncryptedValue: envelope,
			Tags:           entry.Tags,
			Description:    entry.Description,
			Category:       category,
			CreatedBy:      actor.Name,
		})
		if err != nil {
			return nil, err
		}

		results = append(results, &dto.SetSecretResponse{
			ID:        stored.ID,
			Key:       stored.Key,
			Version:   stored.Version,
			UpdatedAt: stored.UpdatedAt,
		})
	}

	s.auditSvc.Record(constants.ActionSecretBulkWrite, constants.ResourceSecret, "", actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
		"count":       fmt.Sprintf("%d", len(results)),
	})

	return &dto.BulkSetSecretsResponse{
		Created: len(results),
		Secrets: results,
	}, nil
}

// GetSecret returns a secret with its decrypted value
func (s *SecretService) GetSecret(projectName, envName, key string, actor Actor) (*dto.Secret, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return nil, err
	}

	secret, err := s.lookupSecret(project, env, key)
	if err != nil {
		return nil, err
	}

	value, err := crypto.Decrypt(secret.EncryptedValue, s.masterKey)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionSecretRead, constants.ResourceSecret, secret.ID, actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
		"key":         key,
	})

	return &dto.Secret{
		ID:          secret.ID,
		Key:         secret.Key,
		Value:       value,
		Version:     secret.Version,
		Description: secret.Description,
		Tags:        secret.Tags,
		Category:    secret.Category,
		CreatedAt:   secret.CreatedAt,
		UpdatedAt:   secret.UpdatedAt,
		CreatedBy:   secret.CreatedBy,
	}, nil
}

// ListSecrets returns secret metadata without values, optionally
// filtered by tag and category.
func (s *SecretService) ListSecrets(projectName, envName, tag, category string, actor Actor) ([]*dto.SecretMetadata, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return nil, err
	}

	secrets, err := s.secretRepo.ListSecrets(project.ID, env.ID, tag, category)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionSecretList, constants.ResourceEnvironment, env.ID, actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
	})

	list := make([]*dto.SecretMetadata, 0, len(secrets))
	for _, secret := range secrets {
		list = append(list, &dto.SecretMetadata{
			ID:          secret.ID,
			Key:         secret.Key,
			Version:     secret.Version,
			Description: secret.Description,
			Tags:        secret.Tags,
			Category:    secret.Category,
			CreatedAt:   secret.CreatedAt,
			UpdatedAt:   secret.UpdatedAt,
			CreatedBy:   secret.CreatedBy,
		})
	}
	return list, nil
}

// DeleteSecret moves a secret to trash. The ciphertext and version chain
// survive until the trash entry is purged.
func (s *SecretService) DeleteSecret(projectName, envName, key string, actor Actor) error {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return err
	}

	deleted, err := s.secretRepo.DeleteSecret(project.ID, env.ID, key)
	if err != nil {
		return err
	}
	if !deleted {
		return s.secretNotFound(project, env, key)
	}

	s.auditSvc.Record(constants.ActionSecretDelete, constants.ResourceSecret, "", actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
		"key":         key,
	})
	return nil
}

// GetSecretVersions returns the archived version history of a secret,
// newest first. Values are never included.
func (s *SecretService) GetSecretVersions(projectName, envName, key string) (*dto.SecretVersionsResponse, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return nil, err
	}

	secret, err := s.lookupSecret(project, env, key)
	if err != nil {
		return nil, err
	}

	versions, err := s.secretRepo.GetSecretVersions(secret.ID)
	if err != nil {
		return nil, err
	}

	infos := make([]*dto.SecretVersionInfo, 0, len(versions))
	for _, v := range versions {
		infos = append(infos, &dto.SecretVersionInfo{
			Version:   v.Version,
			CreatedAt: v.CreatedAt,
			CreatedBy: v.CreatedBy,
		})
	}

	return &dto.SecretVersionsResponse{
		Key:            secret.Key,
		CurrentVersion: secret.Version,
		Versions:       infos,
	}, nil
}

// ExportSecrets decrypts every live secret of an environment and renders
// them in the requested format (env, json or yaml). Keys are sorted for
// stable output.
func (s *SecretService) ExportSecrets(projectName, envName, format string, actor Actor) (string, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return "", err
	}

	values, err := s.decryptEnvironment(project, env)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out string
	switch format {
	case ExportFormatEnv, "":
		var b strings.Builder
		for _, key := range keys {
			fmt.Fprintf(&b, "%s=%s\n", key, quoteEnvValue(values[key]))
		}
		out = b.String()
	case ExportFormatJSON:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return "", err
		}
		out = string(data) + "\n"
	case ExportFormatYAML:
		data, err := yaml.Marshal(values)
		if err != nil {
			return "", err
		}
		out = string(data)
	default:
		return "", fmt.Errorf("%w: %q (valid formats: env, json, yaml)", constants.ErrInvalidExportFormat, format)
	}

	s.auditSvc.Record(constants.ActionSecretExport, constants.ResourceEnvironment, env.ID, actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
		"format":      format,
		"count":       fmt.Sprintf("%d", len(values)),
	})
	return out, nil
}

// GetEnvironmentSecrets decrypts secrets of an environment into a plain
// key/value map. An empty keys slice selects every live secret; requested
// keys that do not exist are left out of the result rather than failing
// the whole fetch.
func (s *SecretService) GetEnvironmentSecrets(projectName, envName string, keys []string, actor Actor) (map[string]string, error) {
	project, env, err := s.resolveTarget(projectName, envName)
	if err != nil {
		return nil, err
	}

	values, err := s.decryptEnvironment(project, env)
	if err != nil {
		return nil, err
	}

	if len(keys) > 0 {
		selected := make(map[string]string, len(keys))
		for _, key := range keys {
			if value, ok := values[key]; ok {
				selected[key] = value
			}
		}
		values = selected
	}

	s.auditSvc.Record(constants.ActionAISecretsRead, constants.ResourceEnvironment, env.ID, actor, map[string]string{
		"project":     project.Name,
		"environment": env.Name,
		"count":       fmt.Sprintf("%d", len(values)),
	})
	return values, nil
}

// decryptEnvironment loads and decrypts every live secret of an
// environment.
func (s *SecretService) decryptEnvironment(project *model.Project, env *model.Environment) (map[string]string, error) {
	secrets, err := s.secretRepo.ListSecrets(project.ID, env.ID, "", "")
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(secrets))
	for _, meta := range secrets {
		// List rows carry no ciphertext; fetch each secret individually
		secret, err := s.secretRepo.GetSecretByKey(project.ID, env.ID, meta.Key)
		if err != nil {
			return nil, err
		}
		if secret == nil {
			continue
		}
		value, err := crypto.Decrypt(secret.EncryptedValue, s.masterKey)
		if err != nil {
			return nil, fmt.Errorf("secret %s: %w", meta.Key, err)
		}
		values[secret.Key] = value
	}
	return values, nil
}

// resolveTarget resolves a project and environment by name, enumerating
// the valid names on a miss.
func (s *SecretService) resolveTarget(projectName, envName string) (*model.Project, *model.Environment, error) {
	project, err := s.projectRepo.GetProjectByName(projectName)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		projects, err := s.projectRepo.ListProjects()
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, notFoundWithNames(constants.ErrProjectNotFound, "projects", projectNames(projects))
	}

	env, err := s.projectRepo.GetEnvironmentByName(project.ID, envName)
	if err != nil {
		return nil, nil, err
	}
	if env == nil {
		environments, err := s.projectRepo.ListEnvironments(project.ID)
		if err != nil {
			return nil, nil, err
		}
		names := make([]string, 0, len(environments))
		for _, e := range environments {
			names = append(names, e.Name)
		}
		return nil, nil, notFoundWithNames(constants.ErrEnvironmentNotFound, "environments", names)
	}

	return project, env, nil
}

// lookupSecret fetches a live secret or returns a not-found error that
// lists the keys present in the environment.
func (s *SecretService) lookupSecret(project *model.Project, env *model.Environment, key string) (*model.Secret, error) {
	secret, err := s.secretRepo.GetSecretByKey(project.ID, env.ID, key)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, s.secretNotFound(project, env, key)
	}
	return secret, nil
}

func (s *SecretService) secretNotFound(project *model.Project, env *model.Environment, key string) error {
	secrets, err := s.secretRepo.ListSecrets(project.ID, env.ID, "", "")
	if err != nil {
		return constants.ErrSecretNotFound
	}
	names := make([]string, 0, len(secrets))
	for _, secret := range secrets {
		names = append(names, secret.Key)
	}
	return notFoundWithNames(constants.ErrSecretNotFound, "keys", names)
}

// quoteEnvValue quotes values that would break dotenv parsing
func quoteEnvValue(value string) string {
	if strings.ContainsAny(value, " \t\n\"'#$") {
		return fmt.Sprintf("%q", value)
	}
	return value
}
