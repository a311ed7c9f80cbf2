// Package function is the HTTP application served by the Lambda function.
package function

import (
	"net/http"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/gorilla/mux"

	"github.com/mattermost/mattermost-lambda-function/entrypoint"
	"github.com/mattermost/mattermost-lambda-function/utils"
	"github.com/mattermost/mattermost-lambda-function/utils/httputils"
)

const (
	PathHealth = "/health"
	PathPing   = "/ping"
	PathInfo   = "/info"
)

type Function struct {
	environment string
	services    *entrypoint.Services
	log         utils.Logger
}

var _ entrypoint.Startup = (*Function)(nil)

// New is the entrypoint.StartupFactory of the function.
func New(hctx *entrypoint.HostContext) (entrypoint.Startup, error) {
	return &Function{
		environment: hctx.Environment,
	}, nil
}

func (f *Function) ConfigureServices(s *entrypoint.Services) error {
	f.services = s
	f.log = s.Log.With("component", "function")
	return nil
}

func (f *Function) Configure(r *mux.Router) {
	r.Path(PathHealth).Methods(http.MethodGet).HandlerFunc(
		httputils.DoHandleData(httputils.ContentTypeText, []byte("OK")))
	r.Path(PathPing).Methods(http.MethodGet).HandlerFunc(
		httputils.DoHandleJSONData([]byte("{}")))
	r.Path(PathInfo).Methods(http.MethodGet).HandlerFunc(f.handleInfo)
}

// Info describes the function instance and the invocation being served.
type Info struct {
	FunctionName    string `json:"function_name,omitempty"`
	FunctionVersion string `json:"function_version,omitempty"`
	MemoryLimitMB   int    `json:"memory_limit_mb,omitempty"`
	Environment     string `json:"environment"`
	Region          string `json:"region,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
	Stage           string `json:"stage,omitempty"`
}

func (f *Function) handleInfo(w http.ResponseWriter, req *http.Request) {
	info := Info{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		MemoryLimitMB:   lambdacontext.MemoryLimitInMB,
		Environment:     f.environment,
	}

	ctx := req.Context()
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		info.RequestID = lc.AwsRequestID
	}
	if gw, ok := core.GetAPIGatewayContextFromContext(ctx); ok {
		info.Stage = gw.Stage
	} else if gw2, ok := core.GetAPIGatewayV2ContextFromContext(ctx); ok {
		info.Stage = gw2.Stage
	}

	sess, err := f.services.AWSSession()
	if err != nil {
		f.log.WithError(err).Warnw("Failed to get AWS session")
	} else if sess.Config.Region != nil {
		info.Region = *sess.Config.Region
	}

	if err = httputils.WriteJSON(w, info); err != nil {
		f.log.WithError(err).Debugw("Failed to write info")
	}
}
