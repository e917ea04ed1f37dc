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

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vault-api/src/config"
	"vault-api/src/internal/mcp"
	"vault-api/src/internal/server"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "serve the Model Context Protocol on stdio instead of HTTPS")
	flag.Parse()

	cfg := config.GetConfig()

	srv, err := server.NewVaultAPIServer(cfg)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}
	defer srv.Shutdown()

	if *mcpMode {
		// Stdout belongs to the MCP transport; keep logs on stderr
		log.SetOutput(os.Stderr)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := mcp.NewVaultServer(srv.ToolService()).Serve(ctx); err != nil {
			log.Fatal("MCP server stopped:", err)
		}
		return
	}

	if err := srv.Start(cfg.Port, cfg.TLS.CertDir); err != nil {
		log.Fatal("Failed to start HTTPS server:", err)
	}
}
