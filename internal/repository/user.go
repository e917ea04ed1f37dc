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

// UserRepo implements UserRepository
type UserRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &UserRepo{db: db}
}

// CreateUser inserts a new user
func (r *UserRepo) CreateUser(user *model.User) error {
	user.CreatedAt = time.Now()
	user.IsActive = true

	query := r.db.Rebind(`
		INSERT INTO users (id, username, password_hash, role, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.Exec(query, user.ID, user.Username, user.PasswordHash, user.Role,
		user.CreatedAt, user.IsActive)
	return err
}

// GetUserByUsername retrieves an active user by username
func (r *UserRepo) GetUserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	query := r.db.Rebind(`
		SELECT id, username, password_hash, role, created_at, is_active
		FROM users
		WHERE username = ? AND is_active = ?
	`)
	err := r.db.QueryRow(query, username, true).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CountUsers returns the total number of users ever registered. Used to
// decide whether a registrant is the first user and therefore admin.
func (r *UserRepo) CountUsers() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
