package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger/src/scheduler"
	"ledger/src/services"
	"ledger/src/utils"

	"github.com/sirupsen/logrus"
)

// Controller owns the per-account sync schedules and the manual trigger path.
type Controller struct {
	SyncService    services.SyncServiceI
	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask

	logger *logrus.Logger
}

func NewController(syncService services.SyncServiceI, logger *logrus.Logger) *Controller {
	return &Controller{
		SyncService: syncService,
		Schedulers:  map[string]*scheduler.ScheduledTask{},
		logger:      logger,
	}
}

func (c *Controller) TriggerSync(ctx context.Context, accountID string) []services.SourceSyncResult {
	return c.SyncService.SyncAccount(ctx, accountID)
}

func (c *Controller) SyncHistory(ctx context.Context, accountID, source string, start, end time.Time) ([]time.Time, error) {
	return c.SyncService.SyncHistory(ctx, accountID, source, start, end)
}

func (c *Controller) PruneSyncLogs(ctx context.Context, accountID string, start, end time.Time) error {
	return c.SyncService.PruneSyncLogs(ctx, accountID, start, end)
}

// ScheduleAccountSync registers a cron entry that reconciles the account
// periodically. One schedule per account; scheduling twice is an error.
func (c *Controller) ScheduleAccountSync(accountID, cronSpec string) error {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	if _, exists := c.Schedulers[accountID]; exists {
		return fmt.Errorf("account %s already has a sync schedule", accountID)
	}

	task, err := scheduler.NewScheduledTask(cronSpec, func() {
		ctx := utils.WithLogger(context.Background(), c.logger)
		c.SyncService.SyncAccount(ctx, accountID)
	})
	if err != nil {
		return err
	}
	c.Schedulers[accountID] = task
	return nil
}

func (c *Controller) CancelAccountSync(accountID string) bool {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	task, exists := c.Schedulers[accountID]
	if !exists {
		return false
	}
	task.Cancel()
	delete(c.Schedulers, accountID)
	return true
}

// ScheduleConfigured sets up the schedules listed in the config at boot.
func (c *Controller) ScheduleConfigured(accounts []string, cronSpec string) error {
	if cronSpec == "" {
		return nil
	}
	for _, accountID := range accounts {
		if err := c.ScheduleAccountSync(accountID, cronSpec); err != nil {
			return err
		}
	}
	return nil
}
