// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package entrypoint

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/mattermost/mattermost-lambda-function/utils"
	"github.com/mattermost/mattermost-lambda-function/utils/httputils"
)

const RequestIDHeader = "X-Request-Id"

const panicMessage = "panicked while handling the request"

// pipeline wraps the application router with the host's own concerns:
// panic recovery, request ids, request logging, and a default status.
type pipeline struct {
	next          http.Handler
	log           utils.Logger
	developerMode bool
}

func newPipeline(next http.Handler, log utils.Logger, developerMode bool) *pipeline {
	return &pipeline{
		next:          next,
		log:           log,
		developerMode: developerMode,
	}
}

// statusWriter records whether, and with what status, the response was
// started.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if w.written {
		return
	}
	w.status = status
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func requestID(req *http.Request) string {
	if lc, ok := lambdacontext.FromContext(req.Context()); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func (p *pipeline) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	id := requestID(req)
	log := p.log.With(
		"request_id", id,
		"method", req.Method,
		"path", req.URL.Path,
	)

	sw := &statusWriter{ResponseWriter: w}
	sw.Header().Set(RequestIDHeader, id)

	defer func() {
		if x := recover(); x != nil {
			stack := string(debug.Stack())

			log.Errorw(
				"Recovered from a panic in an HTTP handler",
				"uri", req.URL.RequestURI(),
				"error", x,
				"stack", stack,
			)

			// The response is already started; abort it rather than let it
			// pass for a complete one.
			if sw.written {
				panic(http.ErrAbortHandler)
			}

			txt := panicMessage + ", "
			if p.developerMode {
				txt += fmt.Sprintf("error: %v, stack: %v", x, stack)
			} else {
				txt += "check the function logs for details"
			}
			sw.Header().Set(httputils.ContentTypeHeader, httputils.ContentTypeText)
			sw.WriteHeader(http.StatusInternalServerError)
			_, _ = sw.Write([]byte(txt))
		}
	}()

	p.next.ServeHTTP(sw, req)

	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	log.Debugw("HTTP", "status", sw.status, "duration", time.Since(start))
}
