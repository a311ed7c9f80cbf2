// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package entrypoint

import (
	"net/http"

	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/utils"
	"github.com/mattermost/mattermost-lambda-function/utils/httputils"
)

// HostContext is what the configuration callbacks and the StartupFactory
// know about the host being built.
type HostContext struct {
	Config      *config.Config
	Environment string
}

// HostBuilder is passed to the InitFunc of an EntryPoint.
type HostBuilder struct {
	hctx    *HostContext
	logging []func(*HostContext, *LoggingBuilder)
	startup StartupFactory
}

func NewHostBuilder(conf *config.Config) *HostBuilder {
	return &HostBuilder{
		hctx: &HostContext{
			Config:      conf,
			Environment: conf.Environment,
		},
	}
}

// ConfigureLogging adds a logging callback. Callbacks run in the order they
// were added.
func (b *HostBuilder) ConfigureLogging(f func(hctx *HostContext, lb *LoggingBuilder)) *HostBuilder {
	if f != nil {
		b.logging = append(b.logging, f)
	}
	return b
}

// UseStartup registers the application. Only one Startup is hosted; a later
// call replaces the factory set by an earlier one.
func (b *HostBuilder) UseStartup(f StartupFactory) *HostBuilder {
	b.startup = f
	return b
}

// Host is the initialized application, immutable once built.
type Host struct {
	Config   *config.Config
	Log      utils.Logger
	Services *Services

	handler   http.Handler
	adapter   *httpadapter.HandlerAdapter
	adapterV2 *httpadapter.HandlerAdapterV2
}

// Build creates the logger, constructs and configures the Startup, and
// assembles the request pipeline. All failures, including panics in the
// callbacks or the Startup, wrap utils.ErrInitialization.
func (b *HostBuilder) Build() (h *Host, err error) {
	defer func() {
		if x := recover(); x != nil {
			h = nil
			err = utils.NewInitializationError("panicked while building the host: %v", x)
		}
	}()

	if b.startup == nil {
		return nil, utils.NewInitializationError("no startup registered")
	}

	lb := newLoggingBuilder(b.hctx.Config)
	for _, f := range b.logging {
		f(b.hctx, lb)
	}
	log, err := lb.build()
	if err != nil {
		return nil, utils.NewInitializationError(err)
	}

	startup, err := constructStartup(b.startup, b.hctx)
	if err != nil {
		log.WithError(err).Errorw("Failed to construct startup")
		return nil, err
	}

	services := newServices(b.hctx.Config, log)
	if err = startup.ConfigureServices(services); err != nil {
		err = utils.NewInitializationError(errors.Wrap(err, "failed to configure services"))
		log.WithError(err).Errorw("Failed to configure services")
		return nil, err
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debugf("Not found: %q", req.URL.RequestURI())
		httputils.WriteError(w, utils.NewNotFoundError("%s %s", req.Method, req.URL.Path))
	})
	startup.Configure(router)

	h = &Host{
		Config:   b.hctx.Config,
		Log:      log,
		Services: services,
		handler:  newPipeline(router, log, b.hctx.Config.DeveloperMode()),
	}
	h.adapter = httpadapter.New(h.handler)
	h.adapterV2 = httpadapter.NewV2(h.handler)
	if p := b.hctx.Config.StripBasePath; p != "" {
		h.adapter.StripBasePath(p)
		h.adapterV2.StripBasePath(p)
	}
	return h, nil
}

func constructStartup(f StartupFactory, hctx *HostContext) (Startup, error) {
	startup, err := f(hctx)
	if err != nil {
		return nil, utils.NewInitializationError(errors.Wrap(err, "failed to construct startup"))
	}
	if startup == nil {
		return nil, utils.NewInitializationError("startup constructor returned nil")
	}
	return startup, nil
}

// Handler returns the request pipeline, for serving outside of Lambda.
func (h *Host) Handler() http.Handler {
	return h.handler
}
