package aplapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"smtpapl/pkg/apl"
	"smtpapl/pkg/middleware"
	"smtpapl/pkg/settings"
)

// App is the operational API container.
// Handlers and middleware have methods on this type.
//
// Keep it lean: shared deps only. The APL is whatever Select chose at boot.
type App struct {
	log      *zap.SugaredLogger
	apl      apl.APL
	backend  string
	settings *settings.Repository
	registry *prometheus.Registry
	auth     middleware.AdminAuthConfig
}

type Deps struct {
	Log      *zap.SugaredLogger
	APL      apl.APL
	Backend  string
	Settings *settings.Repository
	Registry *prometheus.Registry
	Auth     middleware.AdminAuthConfig
}

func New(d Deps) *App {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &App{
		log:      log,
		apl:      d.APL,
		backend:  d.Backend,
		settings: d.Settings,
		registry: reg,
		auth:     d.Auth,
	}
}
