package cmd

import (
	"golang.org/x/time/rate"

	"erp-core/config"
	"erp-core/internal/gateway"
	"erp-core/internal/infrastructure/state"
	"erp-core/internal/pipeline"
	"erp-core/internal/session"
	"erp-core/internal/usecase"
	"erp-core/utils/logger"
)

// app wires the session core for one CLI invocation: config, state
// store, session store, gateway, pipeline and the usecases on top.
// Restore runs eagerly so every command starts from the persisted
// session when one exists.
type app struct {
	cfg   *config.Config
	store *session.Store
	gw    *gateway.AuthGateway

	login       *usecase.Login
	logout      *usecase.Logout
	switchUC    *usecase.SwitchTenant
	currentUser *usecase.CurrentUser
}

func newApp() (*app, error) {
	log := logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}

	store := session.NewStore(state.NewFileStore(cfg.StatePath, log), log)

	gw, err := gateway.NewAuthGateway(cfg.APIBaseURL, cfg.RequestTimeout, log)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}
	pipe := pipeline.New(store, gw, pipeline.Config{
		BaseURL:       cfg.APIBaseURL,
		RefreshBuffer: cfg.RefreshBuffer,
		Limiter:       limiter,
		Logger:        log,
	})

	usecase.NewRestoreSession(store, gw, log).Execute()

	return &app{
		cfg:         cfg,
		store:       store,
		gw:          gw,
		login:       usecase.NewLogin(gw, gw, store, log),
		logout:      usecase.NewLogout(gw, store, log),
		switchUC:    usecase.NewSwitchTenant(pipe, store, log),
		currentUser: usecase.NewCurrentUser(pipe),
	}, nil
}
