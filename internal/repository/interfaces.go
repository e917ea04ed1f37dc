package repository

import (
	"time"

	"vault-api/src/internal/model"
)

// ProjectRepository defines the interface for project and environment data access
type ProjectRepository interface {
	CreateProject(project *model.Project, environments []*model.Environment) error
	GetProjectByID(id string) (*model.Project, error)
	GetProjectByName(name string) (*model.Project, error)
	ListProjects() ([]*model.Project, error)
	DeleteProject(id string) (bool, error)
	CreateEnvironment(env *model.Environment) error
	GetEnvironmentByName(projectID, name string) (*model.Environment, error)
	ListEnvironments(projectID string) ([]*model.Environment, error)
}

// SecretRepository defines the interface for secret data access, including
// the version chain and the trash lifecycle
type SecretRepository interface {
	SetSecret(secret *model.Secret) (*model.Secret, error)
	GetSecretByKey(projectID, environmentID, key string) (*model.Secret, error)
	ListSecrets(projectID, environmentID, tag, category string) ([]*model.Secret, error)
	DeleteSecret(projectID, environmentID, key string) (bool, error)
	ListTrash() ([]*model.TrashItem, error)
	RestoreSecret(secretID string) (bool, error)
	PurgeSecret(secretID string) (bool, error)
	PurgeExpiredTrash(maxAge time.Duration) (int, error)
	GetSecretVersions(secretID string) ([]*model.SecretVersion, error)
}

// APIKeyRepository defines the interface for API key data access
type APIKeyRepository interface {
	CreateAPIKey(key *model.APIKey) error
	GetAPIKeyByHash(keyHash string) (*model.APIKey, error)
	TouchLastUsed(id string, at time.Time) error
	ListAPIKeys() ([]*model.APIKey, error)
	RevokeAPIKey(id string) (bool, error)
	DeleteAPIKey(id string) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	CreateUser(user *model.User) error
	GetUserByUsername(username string) (*model.User, error)
	CountUsers() (int, error)
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	LogAudit(entry *model.AuditLogEntry) error
	GetAuditLog(limit, offset int, action, resourceType string) ([]*model.AuditLogEntry, error)
}
