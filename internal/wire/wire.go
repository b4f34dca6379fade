// Package wire provides dependency injection for the cue application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/cue/internal/adapters/sqlite"
	"github.com/example/cue/internal/app"
	"github.com/example/cue/internal/config"
	"github.com/example/cue/internal/db"
	"github.com/example/cue/internal/logging"
	"github.com/example/cue/internal/ports/primary"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
	hasLog bool

	identityService   primary.IdentityService
	rendezvousService primary.RendezvousService
	consoleService    primary.ConsoleService
	once              sync.Once
)

// SetConfig installs the configuration the services are built from. Call it
// before the first service accessor; once services exist it has no effect.
func SetConfig(c *config.Config) {
	cfg = c
}

// SetLogger installs the logger the services share. The serve command routes
// this to a file because stdout carries the protocol stream; everything else
// logs to stderr.
func SetLogger(l zerolog.Logger) {
	logger = l
	hasLog = true
}

// IdentityService returns the singleton IdentityService instance.
func IdentityService() primary.IdentityService {
	once.Do(initServices)
	return identityService
}

// RendezvousService returns the singleton RendezvousService instance.
func RendezvousService() primary.RendezvousService {
	once.Do(initServices)
	return rendezvousService
}

// ConsoleService returns the singleton ConsoleService instance.
func ConsoleService() primary.ConsoleService {
	once.Do(initServices)
	return consoleService
}

// Config returns the effective configuration, loading defaults when
// SetConfig was never called.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// SetServices installs pre-built services and marks wiring complete. Test
// seam for command tests that run against mocks instead of a real mailbox.
func SetServices(identity primary.IdentityService, rendezvous primary.RendezvousService, console primary.ConsoleService) {
	once.Do(func() {})
	identityService = identity
	rendezvousService = rendezvous
	consoleService = console
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if !hasLog {
		logger = logging.NewConsole(cfg.LogLevel)
	}

	database, err := db.Open(cfg.MailboxPath)
	if err != nil {
		log.Fatalf("failed to open mailbox database: %v", err)
	}

	// Repository adapters (secondary ports) over the shared mailbox handle
	participantRepo := sqlite.NewParticipantRepository(database)
	requestRepo := sqlite.NewRequestRepository(database)
	responseRepo := sqlite.NewResponseRepository(database)

	// Services (primary ports implementation)
	identityService = app.NewIdentityService(participantRepo, requestRepo, cfg.UnknownAgentPolicy, logger)
	rendezvousService = app.NewRendezvousService(identityService, requestRepo, responseRepo, app.RendezvousOptions{
		PollInterval:  cfg.PollInterval,
		CueTimeout:    cfg.CueTimeout,
		AttachPolicy:  cfg.AttachPolicy,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff,
	}, logger)
	consoleService = app.NewConsoleService(participantRepo, requestRepo, responseRepo, logger)
}
