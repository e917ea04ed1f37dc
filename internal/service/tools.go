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
	"strings"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/dto"
)

// ToolName identifies one of the vault's agent-facing tool operations.
// The set is closed: dispatch is an exhaustive switch and unknown names
// are rejected up front.
type ToolName string

const (
	ToolGetSecret    ToolName = "get_secret"
	ToolSetSecret    ToolName = "set_secret"
	ToolListSecrets  ToolName = "list_secrets"
	ToolDeleteSecret ToolName = "delete_secret"
)

// AllToolNames lists every dispatchable tool
var AllToolNames = []ToolName{ToolGetSecret, ToolSetSecret, ToolListSecrets, ToolDeleteSecret}

// ParseToolName validates a tool name against the closed set
func ParseToolName(name string) (ToolName, error) {
	switch ToolName(name) {
	case ToolGetSecret, ToolSetSecret, ToolListSecrets, ToolDeleteSecret:
		return ToolName(name), nil
	default:
		return "", fmt.Errorf("%w: %q (valid tools: %s)", constants.ErrUnknownTool, name, joinToolNames())
	}
}

func joinToolNames() string {
	names := make([]string, 0, len(AllToolNames))
	for _, n := range AllToolNames {
		names = append(names, string(n))
	}
	return strings.Join(names, ", ")
}

// ToolService executes tool calls against the secret store on behalf of
// AI agents. Auditing happens inside SecretService, so a dispatched tool
// call produces the same single audit entry as the equivalent HTTP call.
type ToolService struct {
	secretSvc *SecretService
}

func NewToolService(secretSvc *SecretService) *ToolService {
	return &ToolService{
		secretSvc: secretSvc,
	}
}

// Dispatch runs a tool call and renders its outcome as a text result.
// Domain failures (missing project, missing key) come back as in-band
// error results so the calling agent can read them and retry; only
// malformed calls surface as Go errors.
func (s *ToolService) Dispatch(req *dto.ToolCallRequest, actor Actor) (*dto.ToolCallResult, error) {
	name, err := ParseToolName(req.Name)
	if err != nil {
		return nil, err
	}

	args := req.Arguments
	if args == nil {
		args = map[string]string{}
	}

	var text string
	switch name {
	case ToolGetSecret:
		text, err = s.getSecret(args, actor)
	case ToolSetSecret:
		text, err = s.setSecret(args, actor)
	case ToolListSecrets:
		text, err = s.listSecrets(args, actor)
	case ToolDeleteSecret:
		text, err = s.deleteSecret(args, actor)
	}

	if err != nil {
		return &dto.ToolCallResult{
			Content: []dto.ToolContent{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}

	return &dto.ToolCallResult{
		Content: []dto.ToolContent{{Type: "text", Text: text}},
	}, nil
}

func (s *ToolService) getSecret(args map[string]string, actor Actor) (string, error) {
	project, env, err := requireTarget(args)
	if err != nil {
		return "", err
	}
	key, err := requireArg(args, "key")
	if err != nil {
		return "", err
	}

	secret, err := s.secretSvc.GetSecret(project, env, key, actor)
	if err != nil {
		return "", err
	}
	return secret.Value, nil
}

func (s *ToolService) setSecret(args map[string]string, actor Actor) (string, error) {
	project, env, err := requireTarget(args)
	if err != nil {
		return "", err
	}
	key, err := requireArg(args, "key")
	if err != nil {
		return "", err
	}
	value, err := requireArg(args, "value")
	if err != nil {
		return "", err
	}

	result, err := s.secretSvc.SetSecret(project, env, key, &dto.SetSecretRequest{Value: value}, actor)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Stored %s at version %d", result.Key, result.Version), nil
}

func (s *ToolService) listSecrets(args map[string]string, actor Actor) (string, error) {
	project, env, err := requireTarget(args)
	if err != nil {
		return "", err
	}

	secrets, err := s.secretSvc.ListSecrets(project, env, args["tag"], args["category"], actor)
	if err != nil {
		return "", err
	}

	if len(secrets) == 0 {
		return "No secrets found", nil
	}

	type entry struct {
		Key     string `json:"key"`
		Version int    `json:"version"`
	}
	entries := make([]entry, 0, len(secrets))
	for _, secret := range secrets {
		entries = append(entries, entry{Key: secret.Key, Version: secret.Version})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *ToolService) deleteSecret(args map[string]string, actor Actor) (string, error) {
	project, env, err := requireTarget(args)
	if err != nil {
		return "", err
	}
	key, err := requireArg(args, "key")
	if err != nil {
		return "", err
	}

	if err := s.secretSvc.DeleteSecret(project, env, key, actor); err != nil {
		return "", err
	}
	return fmt.Sprintf("Moved %s to trash", key), nil
}

func requireTarget(args map[string]string) (string, string, error) {
	project, err := requireArg(args, "project")
	if err != nil {
		return "", "", err
	}
	env := args["environment"]
	if env == "" {
		env = "development"
	}
	return project, env, nil
}

func requireArg(args map[string]string, name string) (string, error) {
	value := args[name]
	if value == "" {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	return value, nil
}
