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

import "errors"

var (
	ErrProjectExists      = errors.New("project already exists")
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("invalid project name")
)

var (
	ErrEnvironmentExists   = errors.New("environment already exists in project")
	ErrEnvironmentNotFound = errors.New("environment not found")
)

var (
	ErrSecretNotFound      = errors.New("secret not found")
	ErrTrashItemNotFound   = errors.New("item not found in trash")
	ErrInvalidSecretKey    = errors.New("invalid secret key format")
	ErrEmptySecretValue    = errors.New("secret value cannot be empty")
	ErrInvalidExportFormat = errors.New("unsupported export format")
)

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientScope  = errors.New("insufficient scope")
	ErrAPIKeyNotFound     = errors.New("api key not found")
	ErrAPIKeyInvalid      = errors.New("invalid api key")
	ErrAPIKeyExpired      = errors.New("api key has expired")
)

var (
	// ErrDecryptionFailed covers both a wrong master key and a tampered
	// envelope; GCM cannot distinguish the two.
	ErrDecryptionFailed = errors.New("decryption failed: wrong master key or tampered data")
	ErrInvalidEnvelope  = errors.New("invalid ciphertext envelope")
)

var ErrUnknownTool = errors.New("unknown tool")
