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

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vault-api/src/internal/constants"

	"github.com/go-playground/validator/v10"
)

// makeError creates a standardized error response tuple
func makeError(status int, message string) (int, interface{}) {
	return status, NewErrorResponse(status, http.StatusText(status), message)
}

// FormatValidationError converts validator errors to user-friendly messages (public API)
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error() // Not a validation error, return as-is
	}
	return formatValidationError(validationErrors)
}

// formatValidationError converts ValidationErrors to user-friendly messages (internal)
func formatValidationError(validationErrors validator.ValidationErrors) string {
	var messages []string
	for _, fieldError := range validationErrors {
		fieldName := getUserFriendlyFieldName(fieldError.Field())
		message := getValidationErrorMessage(fieldName, fieldError.Tag(), fieldError.Param())
		messages = append(messages, message)
	}
	return strings.Join(messages, "; ")
}

// getUserFriendlyFieldName maps struct field names to user-friendly field names
func getUserFriendlyFieldName(fieldName string) string {
	fieldMap := map[string]string{
		"Name":        "name",
		"Description": "description",
		"Key":         "key",
		"Value":       "value",
		"Secrets":     "secrets",
		"Tags":        "tags",
		"Category":    "category",
		"Username":    "username",
		"Password":    "password",
		"Scopes":      "scopes",
		"ProjectIDs":  "project IDs",
		"ExpiresIn":   "expires in",
		"Arguments":   "arguments",
	}

	if friendly, exists := fieldMap[fieldName]; exists {
		return friendly
	}
	return strings.ToLower(fieldName)
}

// getValidationErrorMessage creates user-friendly validation error messages
func getValidationErrorMessage(fieldName, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", fieldName)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fieldName, param)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fieldName, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName, strings.ReplaceAll(param, " ", ", "))
	case "dive":
		return fmt.Sprintf("%s contains an invalid entry", fieldName)
	default:
		return fmt.Sprintf("%s is invalid", fieldName)
	}
}

// GetErrorResponse maps domain errors and validation errors to HTTP status and error response
func GetErrorResponse(err error) (int, interface{}) {
	// First check if it's a validation error
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		userFriendlyMessage := formatValidationError(validationErrors)
		return makeError(http.StatusBadRequest, userFriendlyMessage)
	}

	// Handle domain/business logic errors
	switch {
	// Project and environment errors
	case errors.Is(err, constants.ErrProjectNotFound):
		return makeError(http.StatusNotFound, err.Error())
	case errors.Is(err, constants.ErrProjectExists):
		return makeError(http.StatusConflict, "Project with this name already exists")
	case errors.Is(err, constants.ErrInvalidProjectName):
		return makeError(http.StatusBadRequest, err.Error())
	case errors.Is(err, constants.ErrEnvironmentNotFound):
		return makeError(http.StatusNotFound, err.Error())
	case errors.Is(err, constants.ErrEnvironmentExists):
		return makeError(http.StatusConflict, "Environment with this name already exists in the project")

	// Secret errors
	case errors.Is(err, constants.ErrSecretNotFound):
		return makeError(http.StatusNotFound, err.Error())
	case errors.Is(err, constants.ErrTrashItemNotFound):
		return makeError(http.StatusNotFound, "Item not found in trash")
	case errors.Is(err, constants.ErrInvalidSecretKey):
		return makeError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, constants.ErrEmptySecretValue):
		return makeError(http.StatusUnprocessableEntity, "Secret value cannot be empty")
	case errors.Is(err, constants.ErrInvalidExportFormat):
		return makeError(http.StatusBadRequest, err.Error())

	// Authentication and authorization errors
	case errors.Is(err, constants.ErrUnauthorized):
		return makeError(http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, constants.ErrInvalidToken):
		return makeError(http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, constants.ErrInvalidCredentials):
		return makeError(http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, constants.ErrAPIKeyInvalid):
		return makeError(http.StatusUnauthorized, "Invalid API key")
	case errors.Is(err, constants.ErrAPIKeyExpired):
		return makeError(http.StatusUnauthorized, "API key has expired")
	case errors.Is(err, constants.ErrInsufficientScope):
		return makeError(http.StatusForbidden, err.Error())
	case errors.Is(err, constants.ErrUserExists):
		return makeError(http.StatusConflict, "Username already exists")
	case errors.Is(err, constants.ErrUserNotFound):
		return makeError(http.StatusNotFound, "User not found")
	case errors.Is(err, constants.ErrAPIKeyNotFound):
		return makeError(http.StatusNotFound, "API key not found")

	// Tool dispatch errors
	case errors.Is(err, constants.ErrUnknownTool):
		return makeError(http.StatusBadRequest, err.Error())

	// Crypto failures: the detail stays on the server, callers get a
	// generic message so nothing about the key or data leaks out
	case errors.Is(err, constants.ErrDecryptionFailed),
		errors.Is(err, constants.ErrInvalidEnvelope):
		return makeError(http.StatusInternalServerError, "Unable to decrypt stored secret")

	default:
		// Unknown errors: log the cause, return an opaque 500
		LogError("Unhandled error", err)
		return makeError(http.StatusInternalServerError, "An unexpected error occurred")
	}
}
