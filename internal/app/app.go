package app

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/bwmarrin/snowflake"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cashtill/tillgate/config"
	"github.com/cashtill/tillgate/internal/apiclient"
	"github.com/cashtill/tillgate/internal/cartdb"
	"github.com/cashtill/tillgate/internal/store"
	"github.com/cashtill/tillgate/pkg/metrics"
)

const persistPoolSize = 4

type Application struct {
	appConfig *config.AppConfig
	carts     *cartdb.Store
	posStore  *store.Store
	backend   *apiclient.Client
	bus       EventBus.Bus
	pool      *ants.Pool
	sched     *cron.Cron
	idgen     *snowflake.Node
	token     atomic.Value // string
}

// Ensure Application satisfies its collaborator contracts.
var (
	_ ConfigProvider          = (*Application)(nil)
	_ StoreProvider           = (*Application)(nil)
	_ SchedulerProvider       = (*Application)(nil)
	_ apiclient.TokenProvider = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() *store.Store {
	return a.posStore
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) IDGen() *snowflake.Node {
	return a.idgen
}

// Token implements apiclient.TokenProvider: the bearer token of the current
// operator session, "" when logged out.
func (a *Application) Token() string {
	if v, ok := a.token.Load().(string); ok {
		return v
	}
	return ""
}

func (a *Application) SetToken(token string) {
	a.token.Store(token)
}

func (a *Application) ClearToken() {
	a.token.Store("")
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		return err
	}

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warnf("failed to initialize metrics: %v", err)
	}

	a.carts, err = cartdb.Open(filepath.Join(cfg.System.Workdir, "cart.db"))
	if err != nil {
		return err
	}
	zap.S().Infof("cart database opened under %s", cfg.System.Workdir)

	a.idgen, err = snowflake.NewNode(1)
	if err != nil {
		return err
	}

	a.pool, err = ants.NewPool(persistPoolSize, ants.WithNonblocking(true))
	if err != nil {
		return err
	}

	a.bus = EventBus.New()
	a.backend = apiclient.New(
		cfg.Backend.BaseURL,
		cfg.Backend.ApiKey,
		a,
		time.Duration(cfg.Backend.Timeout)*time.Second,
	)
	a.posStore = store.New(a.backend, a.carts, a.bus, a.pool)

	a.initEvents()

	// restore the saved cart; the first catalog fetch reconciles stock
	a.posStore.LoadCart()

	a.initJob()
	return nil
}

// initLogger wires the zap global logger, teeing to a rotated file when
// file logging is enabled.
func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if a.carts != nil {
		_ = a.carts.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
