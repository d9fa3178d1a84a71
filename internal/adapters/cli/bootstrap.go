package cli

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/adapters/persistence"
	"github.com/andrescamacho/excavator-go/internal/adapters/world/sim"
	"github.com/andrescamacho/excavator-go/internal/adapters/world/wsclient"
	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/application/hazard"
	"github.com/andrescamacho/excavator-go/internal/application/navigation"
	domainExcavation "github.com/andrescamacho/excavator-go/internal/domain/excavation"
	domainNavigation "github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/config"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/database"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/logging"
)

// Runtime holds the process-wide services shared by every bot
type Runtime struct {
	Config *config.Config
	Policy *domainExcavation.MaterialPolicy
	DB     *gorm.DB
	Runs   domainExcavation.RunRepository
	Goals  *persistence.GormGoalRepository
	Logs   *persistence.GormOperationLogRepository
}

// NewRuntime sets up logging, metrics, persistence and the material policy
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		if err := metrics.Setup(); err != nil {
			return nil, fmt.Errorf("failed to set up metrics: %w", err)
		}
	}

	policy, err := config.LoadMaterialPolicy(cfg.Excavation.PolicyFile)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Policy: policy}

	db, err := database.NewConnection(&cfg.Database)
	switch {
	case errors.Is(err, database.ErrPersistenceDisabled):
		return rt, nil
	case err != nil:
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	rt.DB = db
	rt.Runs = persistence.NewGormRunRepository(db)
	rt.Goals = persistence.NewGormGoalRepository(db)
	rt.Logs = persistence.NewGormOperationLogRepository(db, nil)
	return rt, nil
}

// Close releases the database connection
func (rt *Runtime) Close() error {
	if rt.DB == nil {
		return nil
	}
	return database.Close(rt.DB)
}

// Logger returns the operation logger for agent: klog, plus the database
// when persistence is on
func (rt *Runtime) Logger(agent string) common.OperationLogger {
	loggers := []common.OperationLogger{logging.NewKlogLogger(rt.Config.Logging.Level)}
	if rt.Logs != nil && rt.Config.Logging.Persist {
		loggers = append(loggers, logging.NewPersistentLogger(rt.Logs, agent, rt.Config.Logging.Level))
	}
	return logging.NewFanoutLogger(loggers...)
}

// Bot is one agent's fully wired excavation stack
type Bot struct {
	Agent      string
	World      world.Client
	Navigator  *navigation.Navigator
	Assessor   *hazard.Assessor
	Controller *excavation.Controller
	Logger     common.OperationLogger

	closer func() error
}

// Context returns ctx carrying the bot's logger
func (b *Bot) Context(ctx context.Context) context.Context {
	return common.WithLogger(ctx, b.Logger)
}

// Close stops any run and disconnects from the world
func (b *Bot) Close() error {
	b.Controller.Stop()
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// DialWorld connects to the bridge for agent
func (rt *Runtime) DialWorld(ctx context.Context, agent, url string) (*wsclient.Client, error) {
	if url == "" {
		url = rt.Config.World.URL
	}
	if url == "" {
		return nil, fmt.Errorf("no world url configured for agent %s (set world.url or use --sim)", agent)
	}
	return wsclient.Dial(ctx, wsclient.Config{
		URL:            url,
		Agent:          agent,
		RequestTimeout: rt.Config.World.RequestTimeout,
		RatePerSecond:  rt.Config.World.RateLimit.Requests,
		Burst:          rt.Config.World.RateLimit.Burst,
	})
}

// NewBot wires the navigator, hazard assessor and controller over client
func (rt *Runtime) NewBot(agent string, client world.Client, closer func() error) *Bot {
	cfg := rt.Config

	assessor := hazard.NewAssessor(client, nil, hazard.Config{
		EscapeUp:         cfg.Hazard.EscapeUp,
		EscapeHorizontal: cfg.Hazard.EscapeHorizontal,
		EscapeTimeout:    cfg.Hazard.EscapeTimeout,
	})
	nav := navigation.NewNavigator(client, assessor, nil, navigation.Config{
		Agent:         agent,
		StepInterval:  cfg.Navigation.StepInterval,
		BurstDuration: cfg.Navigation.BurstDuration,
		JumpPulse:     cfg.Navigation.JumpPulse,
	})
	assessor.SetMover(nav)
	if rt.Goals != nil {
		nav.SetRecorder(rt.Goals)
	}

	reporters := []excavation.ProgressReporter{excavation.LoggingReporter{}, excavation.MetricsReporter{}}
	if rt.Runs != nil {
		reporters = append(reporters, excavation.NewRunRecordReporter(rt.Runs))
	}

	ctrl := excavation.NewController(client, assessor, nav, excavation.Config{
		Agent:     agent,
		Policy:    rt.Policy,
		Reporters: reporters,
		Defaults:  rt.DefaultOptions(),
	})

	return &Bot{
		Agent:      agent,
		World:      client,
		Navigator:  nav,
		Assessor:   assessor,
		Controller: ctrl,
		Logger:     rt.Logger(agent),
		closer:     closer,
	}
}

// NewSimBot wires a bot over the demo world
func (rt *Runtime) NewSimBot(agent string) (*Bot, *sim.World) {
	w := NewDemoWorld()
	return rt.NewBot(agent, w, nil), w
}

// NewRemoteBot dials the bridge and wires a bot over it
func (rt *Runtime) NewRemoteBot(ctx context.Context, agent, url string) (*Bot, error) {
	client, err := rt.DialWorld(ctx, agent, url)
	if err != nil {
		return nil, err
	}
	return rt.NewBot(agent, client, client.Close), nil
}

// DefaultOptions converts the configured defaults into controller options
func (rt *Runtime) DefaultOptions() excavation.Options {
	cfg := rt.Config
	return excavation.Options{
		Throughput:     cfg.Excavation.Throughput,
		ProgressEvery:  cfg.Excavation.ProgressEvery,
		Reach:          cfg.Excavation.Reach,
		HazardRadius:   cfg.Excavation.HazardRadius,
		MaxVolumeCells: cfg.Excavation.MaxVolumeCells,
		Navigation: domainNavigation.Options{
			Tolerance:      cfg.Navigation.Tolerance,
			Timeout:        cfg.Navigation.Timeout,
			CheckObstacles: cfg.Navigation.CheckObstacles,
			AvoidLava:      cfg.Navigation.AvoidLava,
			AvoidWater:     cfg.Navigation.AvoidWater,
		},
	}
}
