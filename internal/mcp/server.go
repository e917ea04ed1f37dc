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

// Package mcp exposes the vault's secret operations over the Model
// Context Protocol on stdio, so agent runtimes can read and write
// secrets without going through HTTP.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vault-api/src/internal/dto"
	"vault-api/src/internal/service"
)

// VaultServer wraps an MCP server with secret-store tool handlers
type VaultServer struct {
	toolSvc   *service.ToolService
	mcpServer *server.MCPServer
}

// NewVaultServer creates a VaultServer with all secret tools registered
func NewVaultServer(toolSvc *service.ToolService) *VaultServer {
	s := &VaultServer{
		toolSvc: toolSvc,
	}

	mcpSrv := server.NewMCPServer(
		"vault-api",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Local encrypted secret store. Use get_secret to fetch credentials, "+
			"set_secret to store them (old values are archived, never destroyed), list_secrets to see "+
			"what exists, and delete_secret to move a secret to the recoverable trash."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes.
func (s *VaultServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports
func (s *VaultServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries
func (s *VaultServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: getSecretTool(), Handler: s.handleGetSecret},
		{Tool: setSecretTool(), Handler: s.handleSetSecret},
		{Tool: listSecretsTool(), Handler: s.handleListSecrets},
		{Tool: deleteSecretTool(), Handler: s.handleDeleteSecret},
	}
}

// --- Tool definitions ---

func getSecretTool() mcp.Tool {
	return mcp.NewTool(string(service.ToolGetSecret),
		mcp.WithDescription("Retrieve the decrypted value of a secret"),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("environment", mcp.Description("Environment name (default: development)")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Secret key, e.g. API_KEY")),
	)
}

func setSecretTool() mcp.Tool {
	return mcp.NewTool(string(service.ToolSetSecret),
		mcp.WithDescription("Store or update a secret value; previous values are archived"),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("environment", mcp.Description("Environment name (default: development)")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Secret key, e.g. API_KEY")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Secret value to store")),
	)
}

func listSecretsTool() mcp.Tool {
	return mcp.NewTool(string(service.ToolListSecrets),
		mcp.WithDescription("List secret keys in an environment without their values"),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("environment", mcp.Description("Environment name (default: development)")),
		mcp.WithString("tag", mcp.Description("Only list secrets carrying this tag")),
		mcp.WithString("category", mcp.Description("Only list secrets in this category")),
	)
}

func deleteSecretTool() mcp.Tool {
	return mcp.NewTool(string(service.ToolDeleteSecret),
		mcp.WithDescription("Move a secret to trash (recoverable until purged)"),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("environment", mcp.Description("Environment name (default: development)")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Secret key to delete")),
	)
}

// --- Tool handlers ---

// dispatch funnels an MCP call through the shared tool dispatcher, so
// HTTP tool calls and MCP calls behave identically.
func (s *VaultServer) dispatch(name string, req mcp.CallToolRequest, argNames ...string) (*mcp.CallToolResult, error) {
	args := make(map[string]string, len(argNames))
	for _, argName := range argNames {
		if value := req.GetString(argName, ""); value != "" {
			args[argName] = value
		}
	}

	result, err := s.toolSvc.Dispatch(&dto.ToolCallRequest{Name: name, Arguments: args}, service.Actor{Name: "mcp"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result.IsError {
		return mcp.NewToolResultError(result.Content[0].Text), nil
	}
	return mcp.NewToolResultText(result.Content[0].Text), nil
}

func (s *VaultServer) handleGetSecret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatch(string(service.ToolGetSecret), req, "project", "environment", "key")
}

func (s *VaultServer) handleSetSecret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatch(string(service.ToolSetSecret), req, "project", "environment", "key", "value")
}

func (s *VaultServer) handleListSecrets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatch(string(service.ToolListSecrets), req, "project", "environment", "tag", "category")
}

func (s *VaultServer) handleDeleteSecret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatch(string(service.ToolDeleteSecret), req, "project", "environment", "key")
}
