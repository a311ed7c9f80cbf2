// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

// Package entrypoint runs an HTTP application inside AWS Lambda. It builds
// the application host once per process and translates each invocation
// event (API Gateway REST or HTTP API, function URL, or ALB) into an
// http.Request handled by the application's router.
package entrypoint

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/utils"
	"github.com/mattermost/mattermost-lambda-function/utils/httputils"
)

type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// InitFunc configures the host: logging, and the Startup to run.
type InitFunc func(b *HostBuilder)

// EntryPoint is the Lambda handler. The host is built on the first call to
// Initialize, or lazily by the first invocation, and never changes after.
type EntryPoint struct {
	conf *config.Config
	init InitFunc

	once  sync.Once
	state atomic.Int32
	host  *Host
	err   error
}

func New(conf *config.Config, init InitFunc) *EntryPoint {
	return &EntryPoint{
		conf: conf,
		init: init,
	}
}

// Initialize builds the host. Only the first call does any work; later calls
// return its result. A failure is permanent for the life of the process.
func (ep *EntryPoint) Initialize() error {
	ep.once.Do(func() {
		ep.host, ep.err = ep.build()
		if ep.err != nil {
			ep.state.Store(int32(StateFailed))
			return
		}
		ep.state.Store(int32(StateReady))
		ep.host.Log.Debugw("Host initialized",
			"event_source", ep.conf.EventSource,
			"environment", ep.conf.Environment)
	})
	return ep.err
}

func (ep *EntryPoint) build() (h *Host, err error) {
	defer func() {
		if x := recover(); x != nil {
			h = nil
			err = utils.NewInitializationError("init panicked: %v", x)
		}
	}()

	b := NewHostBuilder(ep.conf)
	if ep.init != nil {
		ep.init(b)
	}
	return b.Build()
}

func (ep *EntryPoint) State() State {
	return State(ep.state.Load())
}

// Host returns the initialized host, or nil if the entry point is not ready.
func (ep *EntryPoint) Host() *Host {
	if ep.State() != StateReady {
		return nil
	}
	return ep.host
}

// Handler initializes the host and returns its request pipeline, for
// serving over plain HTTP.
func (ep *EntryPoint) Handler() (http.Handler, error) {
	if err := ep.Initialize(); err != nil {
		return nil, err
	}
	return ep.host.Handler(), nil
}

// Start initializes the host and hands control to the Lambda runtime. It
// only returns if initialization fails.
func (ep *EntryPoint) Start() error {
	if err := ep.Initialize(); err != nil {
		return err
	}
	lambda.Start(ep.HandleInvocation)
	return nil
}

// HandleInvocation is the Lambda handler for any supported event shape. The
// response has the shape matching the event. Per-invocation failures are
// returned as error responses; only an initialization failure is returned
// as an error, to the Lambda runtime.
func (ep *EntryPoint) HandleInvocation(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	if err := ep.Initialize(); err != nil {
		return nil, err
	}

	kind := eventKindFromSource(ep.conf.EventSource)
	if kind == EventUnknown {
		kind = DetectEvent(raw)
	}

	switch kind {
	case EventAPIGateway:
		var e events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &e); err != nil {
			return ep.host.reject(invocation{kind: EventAPIGateway}, utils.NewInvalidError(err)), nil
		}
		return ep.host.ProxyAPIGateway(ctx, e), nil

	case EventAPIGatewayV2:
		var e events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &e); err != nil {
			return apiGatewayV2Error(ep.host.rejectMessage(invocation{kind: EventAPIGatewayV2}, utils.NewInvalidError(err))), nil
		}
		return ep.host.ProxyAPIGatewayV2(ctx, e), nil

	case EventALB:
		var e events.ALBTargetGroupRequest
		if err := json.Unmarshal(raw, &e); err != nil {
			status, message := ep.host.rejectMessage(invocation{kind: EventALB}, utils.NewInvalidError(err))
			return albError(status, message, false), nil
		}
		return ep.host.ProxyALB(ctx, e), nil

	default:
		return ep.host.reject(invocation{}, utils.NewUnsupportedError("event type")), nil
	}
}

// ProxyAPIGateway handles an API Gateway REST API (payload v1) event.
func (ep *EntryPoint) ProxyAPIGateway(ctx context.Context, e events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := ep.Initialize(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return ep.host.ProxyAPIGateway(ctx, e), nil
}

// ProxyAPIGatewayV2 handles an API Gateway HTTP API (payload v2) or Lambda
// function URL event.
func (ep *EntryPoint) ProxyAPIGatewayV2(ctx context.Context, e events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if err := ep.Initialize(); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return ep.host.ProxyAPIGatewayV2(ctx, e), nil
}

// ProxyALB handles an Application Load Balancer target group event.
func (ep *EntryPoint) ProxyALB(ctx context.Context, e events.ALBTargetGroupRequest) (events.ALBTargetGroupResponse, error) {
	if err := ep.Initialize(); err != nil {
		return events.ALBTargetGroupResponse{}, err
	}
	return ep.host.ProxyALB(ctx, e), nil
}

// invocation describes an event for logging.
type invocation struct {
	kind   EventKind
	method string
	path   string
}

func (i invocation) Loggable() []interface{} {
	return []interface{}{
		"event_source", i.kind.String(),
		"method", i.method,
		"path", i.path,
	}
}

const internalErrorMessage = "internal server error"

// rejectMessage logs an event that cannot be dispatched, and returns the
// status and body of the error response.
func (h *Host) rejectMessage(inv invocation, err error) (int, string) {
	h.Log.With(inv).WithError(err).Warnw("Rejected invocation event")
	status := httputils.ErrorToStatus(err)
	if errors.Cause(err) == utils.ErrUnsupported {
		return status, "unsupported event type"
	}
	return status, "invalid event: " + err.Error()
}

func (h *Host) reject(inv invocation, err error) events.APIGatewayProxyResponse {
	return apiGatewayError(h.rejectMessage(inv, err))
}

// recoverInvocation turns a panic that escaped the pipeline into an error.
func recoverInvocation(err *error) {
	if x := recover(); x != nil {
		*err = errors.Errorf("panic: %v", x)
	}
}

func (h *Host) proxyAPIGateway(ctx context.Context, e events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer recoverInvocation(&err)
	return h.adapter.ProxyWithContext(ctx, e)
}

func (h *Host) proxyAPIGatewayV2(ctx context.Context, e events.APIGatewayV2HTTPRequest) (resp events.APIGatewayV2HTTPResponse, err error) {
	defer recoverInvocation(&err)
	return h.adapterV2.ProxyWithContext(ctx, e)
}

func (h *Host) ProxyAPIGateway(ctx context.Context, e events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	inv := invocation{kind: EventAPIGateway, method: e.HTTPMethod, path: e.Path}
	if err := validateAPIGateway(&e); err != nil {
		return h.reject(inv, err)
	}

	resp, err := h.proxyAPIGateway(ctx, e)
	if err != nil {
		h.Log.With(inv).WithError(err).Errorw("Invocation failed")
		return apiGatewayError(http.StatusInternalServerError, internalErrorMessage)
	}
	return resp
}

func (h *Host) ProxyAPIGatewayV2(ctx context.Context, e events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	inv := invocation{kind: EventAPIGatewayV2, method: e.RequestContext.HTTP.Method, path: e.RawPath}
	if err := validateAPIGatewayV2(&e); err != nil {
		return apiGatewayV2Error(h.rejectMessage(inv, err))
	}

	resp, err := h.proxyAPIGatewayV2(ctx, e)
	if err != nil {
		h.Log.With(inv).WithError(err).Errorw("Invocation failed")
		return apiGatewayV2Error(http.StatusInternalServerError, internalErrorMessage)
	}
	return resp
}

func (h *Host) ProxyALB(ctx context.Context, e events.ALBTargetGroupRequest) events.ALBTargetGroupResponse {
	inv := invocation{kind: EventALB, method: e.HTTPMethod, path: e.Path}
	multiValue := len(e.MultiValueHeaders) > 0
	if err := validateALB(&e); err != nil {
		status, message := h.rejectMessage(inv, err)
		return albError(status, message, multiValue)
	}

	resp, err := h.proxyAPIGateway(ctx, albToAPIGateway(&e))
	if err != nil {
		h.Log.With(inv).WithError(err).Errorw("Invocation failed")
		return albError(http.StatusInternalServerError, internalErrorMessage, multiValue)
	}
	return apiGatewayToALB(resp, multiValue)
}
