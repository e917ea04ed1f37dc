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

// AISecretsRequest fetches secrets by project and environment name.
// Designed for AI agents that need credentials at runtime; an empty Keys
// list returns every secret in the environment.
type AISecretsRequest struct {
	Project     string   `json:"project" binding:"required"`
	Environment string   `json:"environment"`
	Keys        []string `json:"keys"`
}

// AISecretsResponse maps secret keys to their decrypted values
type AISecretsResponse struct {
	Project     string            `json:"project"`
	Environment string            `json:"environment"`
	Secrets     map[string]string `json:"secrets"`
}

// ToolCallRequest invokes one of the vault's tool operations by name
type ToolCallRequest struct {
	Name      string            `json:"name" binding:"required"`
	Arguments map[string]string `json:"arguments"`
}

// ToolContent is one content block of a tool result
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResult is the tool-call result envelope
type ToolCallResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"is_error"`
}
