// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package entrypoint

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/utils"
)

//go:generate mockgen -destination=mock_entrypoint/mock_startup.go -package=mock_entrypoint github.com/mattermost/mattermost-lambda-function/entrypoint Startup

// Startup is the application hosted by the entry point. The host calls
// ConfigureServices and then Configure, once, while it is being built.
type Startup interface {
	// ConfigureServices prepares the dependencies the application needs.
	// An error aborts initialization.
	ConfigureServices(s *Services) error

	// Configure registers the routes and middleware of the request
	// pipeline.
	Configure(r *mux.Router)
}

// StartupFactory constructs the Startup.
type StartupFactory func(hctx *HostContext) (Startup, error)

// StartupFunc adapts a router configuration func to a StartupFactory, for
// applications that need no services.
func StartupFunc(configure func(r *mux.Router)) StartupFactory {
	return func(*HostContext) (Startup, error) {
		return startupFunc(configure), nil
	}
}

type startupFunc func(r *mux.Router)

func (f startupFunc) ConfigureServices(*Services) error { return nil }
func (f startupFunc) Configure(r *mux.Router)           { f(r) }

// Services are the process-wide dependencies available to the Startup.
// They are safe for concurrent use.
type Services struct {
	Log    utils.Logger
	Config *config.Config

	awsOnce    sync.Once
	awsSession *session.Session
	awsErr     error
}

func newServices(conf *config.Config, log utils.Logger) *Services {
	return &Services{
		Log:    log,
		Config: conf,
	}
}

// AWSSession returns the shared AWS SDK session, creating it on first use.
func (s *Services) AWSSession() (*session.Session, error) {
	s.awsOnce.Do(func() {
		s.awsSession, s.awsErr = session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
			Config: aws.Config{
				Region: aws.String(s.Config.AWSRegion),
			},
		})
		if s.awsErr != nil {
			s.awsErr = errors.Wrap(s.awsErr, "failed to create AWS session")
		}
	})
	return s.awsSession, s.awsErr
}
