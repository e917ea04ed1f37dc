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

package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vault-api/src/config"
	"vault-api/src/internal/crypto"
	"vault-api/src/internal/database"
	"vault-api/src/internal/handler"
	"vault-api/src/internal/middleware"
	"vault-api/src/internal/repository"
	"vault-api/src/internal/service"
	"vault-api/src/internal/websocket"
)

type Server struct {
	router    *gin.Engine
	toolSvc   *service.ToolService
	sweeper   *service.TrashSweeper
	wsManager *websocket.Manager
}

// NewVaultAPIServer creates a new server instance with all dependencies
// initialized: storage, key material, services, handlers and the
// background trash sweeper.
func NewVaultAPIServer(cfg *config.Server) (*Server, error) {
	// Resolve key material before anything touches storage. The values
	// themselves are never logged.
	masterKey, err := crypto.ResolveSecret(cfg.Security.MasterKey, cfg.MasterKeyPath())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve master key: %w", err)
	}
	signingKey, err := crypto.ResolveSecret(cfg.JWT.SecretKey, cfg.JWTSecretPath())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve JWT signing key: %w", err)
	}

	// Initialize database using configuration
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Initialize schema (skip when ExecuteSchemaDDL is false, e.g. managed Postgres without DDL access)
	if cfg.Database.ExecuteSchemaDDL {
		if err := db.InitSchema(cfg.DBSchemaPath); err != nil {
			return nil, err
		}
	} else {
		log.Printf("Skipping schema DDL execution (DATABASE_EXECUTE_SCHEMA_DDL=false)\n")
	}

	// Initialize repositories
	projectRepo := repository.NewProjectRepo(db)
	secretRepo := repository.NewSecretRepo(db)
	apiKeyRepo := repository.NewAPIKeyRepo(db)
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// WebSocket manager fans recorded audit entries out to subscribers
	wsManager := websocket.NewManager(websocket.ManagerConfig{
		MaxConnections:    cfg.WebSocket.MaxConnections,
		HeartbeatInterval: 20 * time.Second,
		HeartbeatTimeout:  time.Duration(cfg.WebSocket.ConnectionTimeout) * time.Second,
	})

	// Initialize services
	auditSvc := service.NewAuditService(auditRepo)
	auditSvc.SetNotifier(wsManager)
	projectSvc := service.NewProjectService(projectRepo, auditSvc)
	secretSvc := service.NewSecretService(projectRepo, secretRepo, auditSvc, masterKey)
	trashSvc := service.NewTrashService(secretRepo, auditSvc)
	authSvc := service.NewAuthService(userRepo, apiKeyRepo, auditSvc, cfg.JWT, signingKey)
	toolSvc := service.NewToolService(secretSvc)

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(projectSvc)
	secretHandler := handler.NewSecretHandler(secretSvc)
	trashHandler := handler.NewTrashHandler(trashSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	aiHandler := handler.NewAIHandler(secretSvc, toolSvc)
	eventsHandler := handler.NewEventsHandler(wsManager)

	// Setup router
	router := gin.Default()

	// Configure and apply CORS middleware first (before auth middleware)
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"}
	router.Use(cors.New(corsConfig))

	// Authentication applies to everything except health and the
	// credential endpoints themselves
	if cfg.Security.DevMode {
		log.Printf("[WARN] Dev mode enabled: unauthenticated requests act as a local admin\n")
	}
	router.Use(middleware.AuthMiddleware(middleware.AuthConfig{
		SecretKey:   signingKey,
		TokenIssuer: cfg.JWT.Issuer,
		SkipPaths:   []string{"/health", "/api/v1/auth/register", "/api/v1/auth/login"},
		DevMode:     cfg.Security.DevMode,
	}, apiKeyRepo))

	// Register routes
	projectHandler.RegisterRoutes(router)
	secretHandler.RegisterRoutes(router)
	trashHandler.RegisterRoutes(router)
	authHandler.RegisterRoutes(router)
	auditHandler.RegisterRoutes(router)
	aiHandler.RegisterRoutes(router)
	eventsHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &Server{
		router:    router,
		toolSvc:   toolSvc,
		wsManager: wsManager,
	}

	if cfg.Trash.SweepEnabled {
		srv.sweeper = service.NewTrashSweeper(trashSvc, cfg.Trash.MaxAgeDays, cfg.Trash.SweepSchedule)
		if err := srv.sweeper.Start(); err != nil {
			return nil, err
		}
	}

	return srv, nil
}

// ToolService exposes the tool dispatcher, e.g. for the MCP transport
func (s *Server) ToolService() *service.ToolService {
	return s.toolSvc
}

// generateSelfSignedCert creates a self-signed certificate for development and saves it to disk
func generateSelfSignedCert(certPath, keyPath string) (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Vault API Dev"},
			Country:      []string{"US"},
		},
		NotBefore:   time.Now(),
		NotAfter:    time.Now().Add(365 * 24 * time.Hour), // Valid for 1 year
		KeyUsage:    x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:    []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	// Save certificate and key to disk for persistence
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to save certificate: %v", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to save private key: %v", err)
	}
	log.Printf("Saved certificate to %s and key to %s", certPath, keyPath)

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, err
	}

	return cert, nil
}

// Start starts the HTTPS server
func (s *Server) Start(port string, certDir string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	certPath := filepath.Join(certDir, "cert.pem")
	keyPath := filepath.Join(certDir, "key.pem")

	var cert tls.Certificate

	// Try to load existing certificates first
	if _, certErr := os.Stat(certPath); certErr == nil {
		if _, keyErr := os.Stat(keyPath); keyErr == nil {
			loadedCert, err := tls.LoadX509KeyPair(certPath, keyPath)
			if err != nil {
				log.Printf("Failed to load certificates: %v", err)
			} else {
				log.Printf("Using existing certificates from %s", certDir)
				cert = loadedCert
			}
		}
	}

	// Generate new certificate if not loaded
	if cert.Certificate == nil {
		log.Println("Generating self-signed certificate for development...")
		if err := os.MkdirAll(certDir, 0755); err != nil {
			return fmt.Errorf("failed to create cert directory: %v", err)
		}
		generatedCert, err := generateSelfSignedCert(certPath, keyPath)
		if err != nil {
			return fmt.Errorf("failed to generate self-signed certificate: %v", err)
		}
		cert = generatedCert
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	address := fmt.Sprintf(":%s", port)
	server := &http.Server{
		Addr:      address,
		Handler:   s.router,
		TLSConfig: tlsConfig,
	}

	log.Printf("Starting HTTPS server on https://localhost:%s", port)
	log.Println("Note: Using self-signed certificate for development. Browsers will show security warnings.")
	return server.ListenAndServeTLS("", "")
}

// Shutdown stops the background sweeper and closes audit stream
// subscribers.
func (s *Server) Shutdown() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	s.wsManager.Shutdown()
}

// GetRouter returns the gin router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
