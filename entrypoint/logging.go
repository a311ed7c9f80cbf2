// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package entrypoint

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/utils"
)

// LoggingBuilder collects the logging configuration of the host. It is
// passed to the ConfigureLogging callbacks, and turned into the host logger
// once they have all run.
type LoggingBuilder struct {
	level    zapcore.Level
	encoding string
	outputs  []string
	cores    []zapcore.Core
	fields   []interface{}
}

func newLoggingBuilder(conf *config.Config) *LoggingBuilder {
	level, err := conf.Level()
	if err != nil {
		level = zapcore.InfoLevel
	}
	return &LoggingBuilder{
		level:    level,
		encoding: conf.LogFormat,
		outputs:  []string{"stderr"},
	}
}

// SetMinimumLevel sets the lowest level written to the outputs. Extra cores
// added with AddCore keep their own level.
func (lb *LoggingBuilder) SetMinimumLevel(level zapcore.Level) *LoggingBuilder {
	lb.level = level
	return lb
}

// SetEncoding selects "console" or "json".
func (lb *LoggingBuilder) SetEncoding(encoding string) *LoggingBuilder {
	lb.encoding = encoding
	return lb
}

// AddOutput adds a zap output path: "stdout", "stderr", or a file.
func (lb *LoggingBuilder) AddOutput(path string) *LoggingBuilder {
	for _, p := range lb.outputs {
		if p == path {
			return lb
		}
	}
	lb.outputs = append(lb.outputs, path)
	return lb
}

// ClearOutputs removes all output paths, including the default stderr.
func (lb *LoggingBuilder) ClearOutputs() *LoggingBuilder {
	lb.outputs = nil
	return lb
}

// AddCore tees log records into an additional zap core.
func (lb *LoggingBuilder) AddCore(core zapcore.Core) *LoggingBuilder {
	lb.cores = append(lb.cores, core)
	return lb
}

// With adds fields to every log record.
func (lb *LoggingBuilder) With(keysAndValues ...interface{}) *LoggingBuilder {
	lb.fields = append(lb.fields, keysAndValues...)
	return lb
}

func (lb *LoggingBuilder) build() (utils.Logger, error) {
	var cores []zapcore.Core
	if len(lb.outputs) > 0 {
		zconf := zap.Config{
			Level:            zap.NewAtomicLevelAt(lb.level),
			Development:      false,
			Encoding:         lb.encoding,
			EncoderConfig:    utils.CommandEncoderConfig(),
			OutputPaths:      lb.outputs,
			ErrorOutputPaths: []string{"stderr"},
		}
		l, err := zconf.Build()
		if err != nil {
			return nil, errors.Wrap(err, "failed to build logger")
		}
		cores = append(cores, l.Core())
	}
	cores = append(cores, lb.cores...)

	log := utils.NewLogger(zap.New(zapcore.NewTee(cores...)))
	if len(lb.fields) > 0 {
		log = log.With(lb.fields...)
	}
	return log, nil
}
