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
	"time"

	"github.com/robfig/cron/v3"

	"vault-api/src/internal/utils"
)

// TrashSweeper periodically purges trashed secrets that have outlived
// the retention window.
type TrashSweeper struct {
	trashSvc *TrashService
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
}

func NewTrashSweeper(trashSvc *TrashService, maxAgeDays int, schedule string) *TrashSweeper {
	return &TrashSweeper{
		trashSvc: trashSvc,
		maxAge:   time.Duration(maxAgeDays) * 24 * time.Hour,
		schedule: schedule,
	}
}

// Start registers the sweep on its cron schedule and runs the scheduler
// in the background.
func (s *TrashSweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid trash sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	utils.LogInfo(fmt.Sprintf("Trash sweeper scheduled (%s), retention %s", s.schedule, s.maxAge))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *TrashSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *TrashSweeper) sweep() {
	purged, err := s.trashSvc.PurgeExpired(s.maxAge)
	if err != nil {
		utils.LogError("Trash sweep failed", err)
		return
	}
	if purged > 0 {
		utils.LogInfo(fmt.Sprintf("Trash sweep purged %d expired secrets", purged))
	}
}
