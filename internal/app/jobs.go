package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// initJob schedules the periodic catalog re-sync. A long-running terminal
// would otherwise display stock that drifts from the backend between manual
// refreshes. An empty sync_interval disables the job.
func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	interval := a.appConfig.Backend.SyncInterval
	if interval != "" {
		_, err := a.sched.AddFunc(interval, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			a.posStore.FetchCategories(ctx)
			a.posStore.FetchAllProducts(ctx)
		})
		if err != nil {
			zap.S().Errorf("catalog sync job config error: %v", err)
		}
	}

	a.sched.Start()
}
