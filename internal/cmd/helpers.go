package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/auth"
	"github.com/rostra-dev/rostra/internal/config"
	"github.com/rostra-dev/rostra/internal/logging"
)

// env assembles everything a command needs: validated config, a file
// logger, the API client, and the identity service.
type env struct {
	cfg    *config.Config
	log    *logging.Logger
	client *api.Client
	auth   *auth.Service
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", config.ValidationErrors(errs))
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		logDir = config.StateDir()
	}
	log, err := logging.NewLogger(logDir, cfg.Logging.Level)
	if err != nil {
		// A broken log path should not block the client; fall back to
		// discarding logs.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		log = logging.NopLogger()
	}

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Token, cfg.Server.RequestTimeout(), log)
	return &env{
		cfg:    cfg,
		log:    log,
		client: client,
		auth:   auth.NewService(client, log),
	}, nil
}

func (e *env) close() {
	_ = e.log.Close()
}

// identity resolves the current user, tolerating anonymous access: shared
// debates are readable without credentials.
func (e *env) identity(ctx context.Context) (userID string, isAdmin bool) {
	user, err := e.auth.CurrentUser(ctx)
	if err != nil {
		e.log.Debug("identity unavailable", "error", err)
		return "", false
	}
	return user.ID, user.IsAdmin
}
