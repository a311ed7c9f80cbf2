// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

// Package config loads the function settings. Precedence, lowest first:
// compiled defaults, the YAML settings file, environment variables.
package config

import (
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"github.com/mattermost/mattermost-lambda-function/utils"
)

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

const (
	EventSourceAuto         = "auto"
	EventSourceAPIGateway   = "apigateway"
	EventSourceAPIGatewayV2 = "apigatewayv2"
	EventSourceALB          = "alb"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

const (
	SettingsFileEnv     = "FUNCTION_SETTINGS_FILE"
	DefaultSettingsFile = "settings.yaml"
)

// envKeys maps the recognized environment variables to config keys; any
// other variable is ignored.
var envKeys = map[string]string{
	"FUNCTION_ENVIRONMENT":     "environment",
	"FUNCTION_LOG_LEVEL":       "log_level",
	"FUNCTION_LOG_FORMAT":      "log_format",
	"FUNCTION_EVENT_SOURCE":    "event_source",
	"FUNCTION_STRIP_BASE_PATH": "strip_base_path",
	"PORT":                     "port",
	"ROOT_URL":                 "root_url",
	"AWS_REGION":               "aws_region",
	"AWS_LAMBDA_FUNCTION_NAME": "function_name",
	"AWS_LAMBDA_RUNTIME_API":   "runtime_api",
}

type Config struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
	LogFormat   string `koanf:"log_format"`

	// EventSource selects the invocation event shape, or "auto" to detect
	// it per invocation.
	EventSource string `koanf:"event_source"`

	// StripBasePath is removed from request paths before routing, e.g. the
	// API Gateway stage or a custom domain base path mapping.
	StripBasePath string `koanf:"strip_base_path"`

	// Local HTTP server settings, used outside of Lambda.
	Port    string `koanf:"port"`
	RootURL string `koanf:"root_url"`

	AWSRegion    string `koanf:"aws_region"`
	FunctionName string `koanf:"function_name"`
	RuntimeAPI   string `koanf:"runtime_api"`
}

func Default() *Config {
	return &Config{
		Environment: EnvironmentProduction,
		LogLevel:    "info",
		LogFormat:   LogFormatConsole,
		EventSource: EventSourceAuto,
		Port:        "8080",
		AWSRegion:   "us-east-1",
	}
}

// Load reads the configuration. A missing settings file is not an error
// unless it was named explicitly in FUNCTION_SETTINGS_FILE.
func Load() (*Config, error) {
	k := koanf.New(".")

	path, explicit := os.LookupEnv(SettingsFileEnv)
	if !explicit {
		path = DefaultSettingsFile
	}
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err = k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "failed to load settings from %s", path)
			}
		case !os.IsNotExist(err) || explicit:
			return nil, errors.Wrapf(err, "failed to read settings file")
		}
	}

	err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	conf := Default()
	if err = k.Unmarshal("", conf); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	conf.normalize()

	if err = conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.EventSource = strings.ToLower(strings.TrimSpace(c.EventSource))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.StripBasePath = strings.TrimSpace(c.StripBasePath)
	if c.EventSource == "" {
		c.EventSource = EventSourceAuto
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems error

	switch c.Environment {
	case EnvironmentProduction, EnvironmentDevelopment:
	default:
		problems = multierror.Append(problems, utils.NewInvalidError("environment %q", c.Environment))
	}

	if _, err := c.Level(); err != nil {
		problems = multierror.Append(problems, utils.NewInvalidError("log_level %q", c.LogLevel))
	}

	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		problems = multierror.Append(problems, utils.NewInvalidError("log_format %q", c.LogFormat))
	}

	switch c.EventSource {
	case EventSourceAuto, EventSourceAPIGateway, EventSourceAPIGatewayV2, EventSourceALB:
	default:
		problems = multierror.Append(problems, utils.NewInvalidError("event_source %q", c.EventSource))
	}

	if c.RootURL != "" {
		if err := utils.IsValidHTTPURL(c.RootURL); err != nil {
			problems = multierror.Append(problems, errors.Wrapf(err, "root_url %q", c.RootURL))
		}
	}

	return problems
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// DeveloperMode enables verbose error responses.
func (c *Config) DeveloperMode() bool {
	return c.Environment == EnvironmentDevelopment
}

// IsLambda reports whether the process runs inside the AWS Lambda runtime.
func (c *Config) IsLambda() bool {
	return c.FunctionName != "" || c.RuntimeAPI != ""
}
