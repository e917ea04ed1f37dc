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

package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vault-api/src/internal/constants"
	"vault-api/src/internal/dto"
	"vault-api/src/internal/model"
	"vault-api/src/internal/repository"
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	auditSvc    *AuditService
}

func NewProjectService(projectRepo repository.ProjectRepository, auditSvc *AuditService) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		auditSvc:    auditSvc,
	}
}

// CreateProject creates a project together with its default environments
// in a single transaction.
func (s *ProjectService) CreateProject(req *dto.CreateProjectRequest, actor Actor) (*dto.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, constants.ErrInvalidProjectName
	}

	existing, err := s.projectRepo.GetProjectByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, constants.ErrProjectExists
	}

	now := time.Now()
	project := &model.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	environments := make([]*model.Environment, 0, len(constants.DefaultEnvironments))
	for _, envName := range constants.DefaultEnvironments {
		environments = append(environments, &model.Environment{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Name:      envName,
			CreatedAt: now,
		})
	}

	if err := s.projectRepo.CreateProject(project, environments); err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionProjectCreate, constants.ResourceProject, project.ID, actor,
		map[string]string{"project": project.Name})

	result := projectToDTO(project)
	for _, env := range environments {
		result.Environments = append(result.Environments, environmentToDTO(env))
	}
	return result, nil
}

// GetProject returns a project by name with its environments. An unknown
// name yields a not-found error that enumerates the existing projects.
func (s *ProjectService) GetProject(name string) (*dto.Project, error) {
	project, err := s.resolveProject(name)
	if err != nil {
		return nil, err
	}

	environments, err := s.projectRepo.ListEnvironments(project.ID)
	if err != nil {
		return nil, err
	}

	result := projectToDTO(project)
	for _, env := range environments {
		result.Environments = append(result.Environments, environmentToDTO(env))
	}
	return result, nil
}

// ListProjects returns all projects without their environments
func (s *ProjectService) ListProjects() (*dto.ProjectListResponse, error) {
	projects, err := s.projectRepo.ListProjects()
	if err != nil {
		return nil, err
	}

	list := make([]*dto.Project, 0, len(projects))
	for _, project := range projects {
		list = append(list, projectToDTO(project))
	}

	return &dto.ProjectListResponse{
		Count: len(list),
		List:  list,
	}, nil
}

// DeleteProject removes a project and, through cascade, its environments,
// secrets and version history.
func (s *ProjectService) DeleteProject(name string, actor Actor) error {
	project, err := s.resolveProject(name)
	if err != nil {
		return err
	}

	deleted, err := s.projectRepo.DeleteProject(project.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return constants.ErrProjectNotFound
	}

	s.auditSvc.Record(constants.ActionProjectDelete, constants.ResourceProject, project.ID, actor,
		map[string]string{"project": project.Name})
	return nil
}

// CreateEnvironment adds a custom environment to an existing project
func (s *ProjectService) CreateEnvironment(projectName string, req *dto.CreateEnvironmentRequest, actor Actor) (*dto.Environment, error) {
	project, err := s.resolveProject(projectName)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	existing, err := s.projectRepo.GetEnvironmentByName(project.ID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, constants.ErrEnvironmentExists
	}

	env := &model.Environment{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		Name:        name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.projectRepo.CreateEnvironment(env); err != nil {
		return nil, err
	}

	s.auditSvc.Record(constants.ActionEnvCreate, constants.ResourceEnvironment, env.ID, actor,
		map[string]string{"project": project.Name, "environment": env.Name})

	result := environmentToDTO(env)
	return &result, nil
}

// ListEnvironments returns the environments of a project
func (s *ProjectService) ListEnvironments(projectName string) ([]dto.Environment, error) {
	project, err := s.resolveProject(projectName)
	if err != nil {
		return nil, err
	}

	environments, err := s.projectRepo.ListEnvironments(project.ID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.Environment, 0, len(environments))
	for _, env := range environments {
		list = append(list, environmentToDTO(env))
	}
	return list, nil
}

// resolveProject looks up a project by name. On a miss the error lists
// the names that do exist, so callers can self-correct instead of
// guessing.
func (s *ProjectService) resolveProject(name string) (*model.Project, error) {
	project, err := s.projectRepo.GetProjectByName(name)
	if err != nil {
		return nil, err
	}
	if project != nil {
		return project, nil
	}

	projects, err := s.projectRepo.ListProjects()
	if err != nil {
		return nil, err
	}
	return nil, notFoundWithNames(constants.ErrProjectNotFound, "projects", projectNames(projects))
}

// notFoundWithNames wraps a not-found sentinel with the set of names
// that would have matched. errors.Is still resolves the sentinel.
func notFoundWithNames(sentinel error, what string, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: no %s exist yet", sentinel, what)
	}
	return fmt.Errorf("%w: available %s: %s", sentinel, what, strings.Join(names, ", "))
}

func projectNames(projects []*model.Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}

func projectToDTO(project *model.Project) *dto.Project {
	return &dto.Project{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func environmentToDTO(env *model.Environment) dto.Environment {
	return dto.Environment{
		ID:          env.ID,
		ProjectID:   env.ProjectID,
		Name:        env.Name,
		Description: env.Description,
		CreatedAt:   env.CreatedAt,
	}
}
