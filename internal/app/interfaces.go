package app

import (
	"github.com/robfig/cron/v3"

	"github.com/cashtill/tillgate/config"
	"github.com/cashtill/tillgate/internal/store"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the catalog & cart store
type StoreProvider interface {
	Store() *store.Store
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}
