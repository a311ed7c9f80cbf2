package entrypoint_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/entrypoint"
)

func testConfig() *config.Config {
	conf := config.Default()
	conf.LogLevel = "debug"
	return conf
}

// testRoutes is the application used by the tests.
func testRoutes(r *mux.Router) {
	r.Path("/health").Methods(http.MethodGet).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})
	r.Path("/crash").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		panic("boom")
	})
	r.Path("/half").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("partial"))
		panic("half way")
	})
	r.Path("/silent").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})
	r.Path("/echo").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		w.Header().Set("X-Echo-Id", req.URL.Query().Get("id"))
		fmt.Fprintf(w, "%s %s id=%s body=%s", req.Method, req.URL.Path, req.URL.Query().Get("id"), body)
	})
	r.Path("/ctx").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := req.Context().Err(); err != nil {
			_, _ = w.Write([]byte(err.Error()))
			return
		}
		_, _ = w.Write([]byte("live"))
	})
	r.Path("/created").Methods(http.MethodPost).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2; Expires=Wed, 21 Oct 2015 07:28:00 GMT")
		w.Header().Add("X-Multi", "one")
		w.Header().Add("X-Multi", "two")
		w.WriteHeader(http.StatusCreated)
	})
}

// newEntryPoint returns an entry point hosting testRoutes, with its logs
// captured.
func newEntryPoint(t *testing.T, conf *config.Config) (*entrypoint.EntryPoint, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	ep := entrypoint.New(conf, func(b *entrypoint.HostBuilder) {
		b.ConfigureLogging(func(_ *entrypoint.HostContext, lb *entrypoint.LoggingBuilder) {
			lb.ClearOutputs().AddCore(core)
		})
		b.UseStartup(entrypoint.StartupFunc(testRoutes))
	})
	return ep, logs
}

func apiGatewayEvent(method, path string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Host": "example.execute-api.us-east-1.amazonaws.com"},
		RequestContext: events.APIGatewayProxyRequestContext{
			Stage:      "prod",
			DomainName: "example.execute-api.us-east-1.amazonaws.com",
		},
	}
}

func apiGatewayV2Event(method, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		Version:  "2.0",
		RouteKey: "$default",
		RawPath:  path,
		Headers:  map[string]string{"host": "example.lambda-url.us-east-1.on.aws"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			DomainName: "example.lambda-url.us-east-1.on.aws",
			Stage:      "$default",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   path,
			},
		},
	}
}

func albEvent(method, path string) events.ALBTargetGroupRequest {
	return events.ALBTargetGroupRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"host": "lb.example.com"},
		RequestContext: events.ALBTargetGroupRequestContext{
			ELB: events.ELBContext{TargetGroupArn: "arn:aws:elasticloadbalancing:us-east-1:123456789012:targetgroup/fn/abc"},
		},
	}
}

// header finds a response header in either the single or the multi-value
// header map.
func header(single map[string]string, multi map[string][]string, name string) string {
	for k, v := range single {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, vv := range multi {
		if strings.EqualFold(k, name) {
			return strings.Join(vv, ",")
		}
	}
	return ""
}
