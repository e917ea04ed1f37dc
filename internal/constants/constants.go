/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
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

package constants

// DefaultEnvironments are created atomically with every new project.
var DefaultEnvironments = []string{"development", "staging", "production"}

// Authentication methods carried on a resolved principal.
const (
	AuthMethodJWT    = "jwt"
	AuthMethodAPIKey = "api_key"
	AuthMethodDev    = "dev"
)

// API key scopes. ScopeAdmin acts as a wildcard over the others.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeAdmin = "admin"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Audit action names (dotted, resource-first).
const (
	ActionSecretRead       = "secret.read"
	ActionSecretWrite      = "secret.write"
	ActionSecretBulkWrite  = "secret.bulk_write"
	ActionSecretList       = "secret.list"
	ActionSecretExport     = "secret.export"
	ActionSecretDelete     = "secret.delete"
	ActionSecretRestore    = "secret.restore"
	ActionSecretPurge      = "secret.purge"
	ActionSecretEmptyTrash = "secret.empty_trash"
	ActionProjectCreate    = "project.create"
	ActionProjectDelete    = "project.delete"
	ActionEnvCreate        = "environment.create"
	ActionUserRegister     = "user.register"
	ActionUserLogin        = "user.login"
	ActionAPIKeyCreate     = "api_key.create"
	ActionAPIKeyRevoke     = "api_key.revoke"
	ActionAPIKeyDelete     = "api_key.delete"
	ActionAISecretsRead    = "ai.secrets.read"
)

// Resource types recorded in the audit log.
const (
	ResourceSecret      = "secret"
	ResourceProject     = "project"
	ResourceEnvironment = "environment"
	ResourceUser        = "user"
	ResourceAPIKey      = "api_key"
)

// APIKeyPrefix marks raw API keys so leaked values are recognizable in
// scanners and logs.
const APIKeyPrefix = "av_"
