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
	"errors"
	"strings"
	"testing"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/dto"
)

var agent = Actor{Name: "agent"}

func setupToolService(t *testing.T) (*ToolService, *vaultServices) {
	t.Helper()
	svc := setupVaultServices(t)
	if _, err := svc.projectSvc.CreateProject(&dto.CreateProjectRequest{Name: "acme"}, agent); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return NewToolService(svc.secretSvc), svc
}

func TestToolDispatch(t *testing.T) {
	tools, _ := setupToolService(t)

	// set_secret stores and reports the version
	result, err := tools.Dispatch(&dto.ToolCallRequest{
		Name:      "set_secret",
		Arguments: map[string]string{"project": "acme", "key": "API_KEY", "value": "sk-123"},
	}, agent)
	if err != nil {
		t.Fatalf("set_secret dispatch failed: %v", err)
	}
	if result.IsError || !strings.Contains(result.Content[0].Text, "version 1") {
		t.Errorf("set_secret result = %+v, want version 1 confirmation", result)
	}

	// get_secret returns the decrypted value; environment defaults to development
	result, err = tools.Dispatch(&dto.ToolCallRequest{
		Name:      "get_secret",
		Arguments: map[string]string{"project": "acme", "key": "API_KEY"},
	}, agent)
	if err != nil {
		t.Fatalf("get_secret dispatch failed: %v", err)
	}
	if result.IsError || result.Content[0].Text != "sk-123" {
		t.Errorf("get_secret result = %+v, want sk-123", result)
	}

	// list_secrets returns key/version entries
	result, err = tools.Dispatch(&dto.ToolCallRequest{
		Name:      "list_secrets",
		Arguments: map[string]string{"project": "acme"},
	}, agent)
	if err != nil {
		t.Fatalf("list_secrets dispatch failed: %v", err)
	}
	if result.IsError || !strings.Contains(result.Content[0].Text, `"key":"API_KEY"`) {
		t.Errorf("list_secrets result = %+v, want API_KEY entry", result)
	}

	// delete_secret moves to trash
	result, err = tools.Dispatch(&dto.ToolCallRequest{
		Name:      "delete_secret",
		Arguments: map[string]string{"project": "acme", "key": "API_KEY"},
	}, agent)
	if err != nil {
		t.Fatalf("delete_secret dispatch failed: %v", err)
	}
	if result.IsError || !strings.Contains(result.Content[0].Text, "trash") {
		t.Errorf("delete_secret result = %+v, want trash confirmation", result)
	}
}

func TestToolDispatchAuditsOnce(t *testing.T) {
	tools, svc := setupToolService(t)

	if _, err := svc.secretSvc.SetSecret("acme", "development", "API_KEY",
		&dto.SetSecretRequest{Value: "sk-123"}, agent); err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}
	before, err := svc.auditSvc.Query(100, 0, "", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// A dispatched read leaves the same single trail as the direct call
	if _, err := tools.Dispatch(&dto.ToolCallRequest{
		Name:      "get_secret",
		Arguments: map[string]string{"project": "acme", "key": "API_KEY"},
	}, agent); err != nil {
		t.Fatalf("get_secret dispatch failed: %v", err)
	}

	after, err := svc.auditSvc.Query(100, 0, "", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	added := len(after.Entries) - len(before.Entries)
	if added != 1 {
		t.Fatalf("tool call added %d audit entries, want exactly 1", added)
	}
	if after.Entries[0].Action != constants.ActionSecretRead {
		t.Errorf("tool call recorded %s, want %s", after.Entries[0].Action, constants.ActionSecretRead)
	}
}

func TestToolDispatchUnknownTool(t *testing.T) {
	tools, _ := setupToolService(t)

	_, err := tools.Dispatch(&dto.ToolCallRequest{Name: "drop_database"}, agent)
	if !errors.Is(err, constants.ErrUnknownTool) {
		t.Fatalf("error = %v, want ErrUnknownTool", err)
	}
	// The error names the valid tools
	if !strings.Contains(err.Error(), "get_secret") {
		t.Errorf("unknown-tool error %q does not list valid tools", err)
	}
}

func TestToolDispatchDomainErrorsAreInBand(t *testing.T) {
	tools, _ := setupToolService(t)

	tests := []struct {
		name string
		req  *dto.ToolCallRequest
		want string
	}{
		{
			"missing project argument",
			&dto.ToolCallRequest{Name: "get_secret", Arguments: map[string]string{"key": "X"}},
			"missing required argument: project",
		},
		{
			"unknown project",
			&dto.ToolCallRequest{Name: "get_secret", Arguments: map[string]string{"project": "nope", "key": "X"}},
			"acme",
		},
		{
			"unknown key",
			&dto.ToolCallRequest{Name: "get_secret", Arguments: map[string]string{"project": "acme", "key": "MISSING"}},
			"not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.Dispatch(tt.req, agent)
			if err != nil {
				t.Fatalf("dispatch returned out-of-band error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected an in-band error result")
			}
			if !strings.Contains(result.Content[0].Text, tt.want) {
				t.Errorf("error text %q does not contain %q", result.Content[0].Text, tt.want)
			}
		})
	}
}

func TestParseToolName(t *testing.T) {
	for _, name := range AllToolNames {
		if _, err := ParseToolName(string(name)); err != nil {
			t.Errorf("ParseToolName(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseToolName("GET_SECRET"); !errors.Is(err, constants.ErrUnknownTool) {
		t.Errorf("tool names are case sensitive; error = %v, want ErrUnknownTool", err)
	}
}
