// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package entrypoint

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/utils"
	"github.com/mattermost/mattermost-lambda-function/utils/httputils"
)

type EventKind int

const (
	EventUnknown EventKind = iota
	EventAPIGateway
	EventAPIGatewayV2
	EventALB
)

func (k EventKind) String() string {
	switch k {
	case EventAPIGateway:
		return config.EventSourceAPIGateway
	case EventAPIGatewayV2:
		return config.EventSourceAPIGatewayV2
	case EventALB:
		return config.EventSourceALB
	default:
		return "unknown"
	}
}

// eventKindFromSource returns EventUnknown for "auto".
func eventKindFromSource(source string) EventKind {
	switch source {
	case config.EventSourceAPIGateway:
		return EventAPIGateway
	case config.EventSourceAPIGatewayV2:
		return EventAPIGatewayV2
	case config.EventSourceALB:
		return EventALB
	default:
		return EventUnknown
	}
}

// eventProbe holds just enough of an invocation event to tell the supported
// shapes apart.
type eventProbe struct {
	Version        string `json:"version"`
	HTTPMethod     string `json:"httpMethod"`
	RequestContext struct {
		ELB  json.RawMessage `json:"elb"`
		HTTP struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// DetectEvent classifies a raw invocation event. Lambda function URL events
// share the API Gateway v2 payload format and are reported as such.
func DetectEvent(raw json.RawMessage) EventKind {
	var probe eventProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return EventUnknown
	}
	switch {
	case len(probe.RequestContext.ELB) > 0 && string(probe.RequestContext.ELB) != "null":
		return EventALB
	case probe.Version == "2.0" || probe.RequestContext.HTTP.Method != "":
		return EventAPIGatewayV2
	case probe.HTTPMethod != "":
		return EventAPIGateway
	default:
		return EventUnknown
	}
}

func validateBody(body string, isBase64 bool) error {
	if !isBase64 {
		return nil
	}
	if _, err := base64.StdEncoding.DecodeString(body); err != nil {
		return utils.NewInvalidError("body is not valid base64: %v", err)
	}
	return nil
}

func validateAPIGateway(e *events.APIGatewayProxyRequest) error {
	if e.HTTPMethod == "" {
		return utils.NewInvalidError("missing httpMethod")
	}
	return validateBody(e.Body, e.IsBase64Encoded)
}

func validateAPIGatewayV2(e *events.APIGatewayV2HTTPRequest) error {
	if e.RequestContext.HTTP.Method == "" {
		return utils.NewInvalidError("missing requestContext.http.method")
	}
	return validateBody(e.Body, e.IsBase64Encoded)
}

func validateALB(e *events.ALBTargetGroupRequest) error {
	if e.HTTPMethod == "" {
		return utils.NewInvalidError("missing httpMethod")
	}
	return validateBody(e.Body, e.IsBase64Encoded)
}

func textHeaders() map[string]string {
	return map[string]string{httputils.ContentTypeHeader: httputils.ContentTypeText}
}

func apiGatewayError(status int, message string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    textHeaders(),
		Body:       message,
	}
}

func apiGatewayV2Error(status int, message string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    textHeaders(),
		Body:       message,
	}
}

func albError(status int, message string, multiValue bool) events.ALBTargetGroupResponse {
	resp := events.ALBTargetGroupResponse{
		StatusCode:        status,
		StatusDescription: statusDescription(status),
		Body:              message,
	}
	if multiValue {
		resp.MultiValueHeaders = map[string][]string{httputils.ContentTypeHeader: {httputils.ContentTypeText}}
	} else {
		resp.Headers = textHeaders()
	}
	return resp
}

func statusDescription(status int) string {
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// ALB passes query strings through as received, still URL-encoded; the API
// Gateway translation expects them decoded.
func unescapeQuery(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[unescape(k)] = unescape(v)
	}
	return out
}

func unescapeMultiQuery(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, vv := range in {
		values := make([]string, 0, len(vv))
		for _, v := range vv {
			values = append(values, unescape(v))
		}
		out[unescape(k)] = values
	}
	return out
}

func unescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return u
}

func albToAPIGateway(e *events.ALBTargetGroupRequest) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{
		HTTPMethod:                      e.HTTPMethod,
		Path:                            e.Path,
		QueryStringParameters:           unescapeQuery(e.QueryStringParameters),
		MultiValueQueryStringParameters: unescapeMultiQuery(e.MultiValueQueryStringParameters),
		Headers:                         e.Headers,
		MultiValueHeaders:               e.MultiValueHeaders,
		Body:                            e.Body,
		IsBase64Encoded:                 e.IsBase64Encoded,
	}
	if host := headerValue(e.Headers, e.MultiValueHeaders, "host"); host != "" {
		req.RequestContext.DomainName = host
	}
	return req
}

func headerValue(single map[string]string, multi map[string][]string, name string) string {
	for k, v := range single {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, vv := range multi {
		if strings.EqualFold(k, name) && len(vv) > 0 {
			return vv[0]
		}
	}
	return ""
}

// apiGatewayToALB converts the response of an ALB request that was handled
// as an API Gateway one. ALB only accepts multi-value headers in the
// response when the target group has them enabled, which shows in the
// request.
func apiGatewayToALB(resp events.APIGatewayProxyResponse, multiValue bool) events.ALBTargetGroupResponse {
	out := events.ALBTargetGroupResponse{
		StatusCode:        resp.StatusCode,
		StatusDescription: statusDescription(resp.StatusCode),
		Body:              resp.Body,
		IsBase64Encoded:   resp.IsBase64Encoded,
	}

	headers := http.Header{}
	for k, v := range resp.Headers {
		headers.Set(k, v)
	}
	for k, vv := range resp.MultiValueHeaders {
		headers.Del(k)
		for _, v := range vv {
			headers.Add(k, v)
		}
	}
	if len(headers) == 0 {
		return out
	}

	if multiValue {
		out.MultiValueHeaders = headers
		return out
	}
	out.Headers = make(map[string]string, len(headers))
	for k, vv := range headers {
		if k == setCookieHeader {
			// Cookie values may contain commas, so they cannot be joined.
			out.Headers[k] = vv[len(vv)-1]
			continue
		}
		out.Headers[k] = strings.Join(vv, ",")
	}
	return out
}

const setCookieHeader = "Set-Cookie"
