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

package repository

import (
	"database/sql"
	"errors"
	"time"

	"vault-api/src/internal/database"
	"vault-api/src/internal/model"
)

// ProjectRepo implements ProjectRepository
type ProjectRepo struct {
	db *database.DB
}

// NewProjectRepo creates a new project repository
func NewProjectRepo(db *database.DB) ProjectRepository {
	return &ProjectRepo{db: db}
}

// CreateProject inserts a new project together with its default
// environments in one transaction, so a project is never observable
// without them.
func (r *ProjectRepo) CreateProject(project *model.Project, environments []*model.Environment) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := r.db.Rebind(`
		INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := tx.Exec(query, project.ID, project.Name, project.Description, project.CreatedAt, project.UpdatedAt); err != nil {
		return err
	}

	envQuery := r.db.Rebind(`
		INSERT INTO environments (id, project_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	for _, env := range environments {
		env.ProjectID = project.ID
		env.CreatedAt = now
		if _, err := tx.Exec(envQuery, env.ID, env.ProjectID, env.Name, env.Description, env.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetProjectByID retrieves a project by ID
func (r *ProjectRepo) GetProjectByID(id string) (*model.Project, error) {
	query := r.db.Rebind(`
		SELECT id, name, description, created_at, updated_at
		FROM projects
		WHERE id = ?
	`)
	return r.scanProject(r.db.QueryRow(query, id))
}

// GetProjectByName retrieves a project by its unique name
func (r *ProjectRepo) GetProjectByName(name string) (*model.Project, error) {
	query := r.db.Rebind(`
		SELECT id, name, description, created_at, updated_at
		FROM projects
		WHERE name = ?
	`)
	return r.scanProject(r.db.QueryRow(query, name))
}

func (r *ProjectRepo) scanProject(row *sql.Row) (*model.Project, error) {
	project := &model.Project{}
	err := row.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return project, nil
}

// ListProjects retrieves all projects, newest first
func (r *ProjectRepo) ListProjects() ([]*model.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project := &model.Project{}
		err := rows.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// DeleteProject removes a project; environments, secrets and secret
// versions go with it via FK cascade. Returns false when no row matched.
func (r *ProjectRepo) DeleteProject(id string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM projects WHERE id = ?`)
	result, err := r.db.Exec(query, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateEnvironment inserts a custom environment into a project
func (r *ProjectRepo) CreateEnvironment(env *model.Environment) error {
	env.CreatedAt = time.Now()
	query := r.db.Rebind(`
		INSERT INTO environments (id, project_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := r.db.Exec(query, env.ID, env.ProjectID, env.Name, env.Description, env.CreatedAt)
	return err
}

// GetEnvironmentByName retrieves an environment by project and name
func (r *ProjectRepo) GetEnvironmentByName(projectID, name string) (*model.Environment, error) {
	env := &model.Environment{}
	query := r.db.Rebind(`
		SELECT id, project_id, name, description, created_at
		FROM environments
		WHERE project_id = ? AND name = ?
	`)
	err := r.db.QueryRow(query, projectID, name).Scan(
		&env.ID, &env.ProjectID, &env.Name, &env.Description, &env.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return env, nil
}

// ListEnvironments retrieves all environments of a project in creation order
func (r *ProjectRepo) ListEnvironments(projectID string) ([]*model.Environment, error) {
	query := r.db.Rebind(`
		SELECT id, project_id, name, description, created_at
		FROM environments
		WHERE project_id = ?
		ORDER BY created_at
	`)
	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var environments []*model.Environment
	for rows.Next() {
		env := &model.Environment{}
		err := rows.Scan(&env.ID, &env.ProjectID, &env.Name, &env.Description, &env.CreatedAt)
		if err != nil {
			return nil, err
		}
		environments = append(environments, env)
	}

	return environments, rows.Err()
}
