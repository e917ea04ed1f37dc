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

package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveSecret resolves a process-wide 256-bit secret (master key or JWT
// signing secret) at startup. Resolution order: the explicit value (from
// the environment), then a previously persisted key file, then a freshly
// generated value persisted with owner-only permissions. The secret is
// read-only after startup and must never be logged or returned in a
// response.
func ResolveSecret(explicit, keyFilePath string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		value := strings.TrimSpace(string(data))
		if value != "" {
			return value, nil
		}
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	value := hex.EncodeToString(raw)

	if err := os.MkdirAll(filepath.Dir(keyFilePath), 0700); err != nil {
		return "", fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(value+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to persist key file: %w", err)
	}

	return value, nil
}
