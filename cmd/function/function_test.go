package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/utils"
)

const healthEvent = `{"httpMethod":"GET","path":"/health","requestContext":{"stage":"prod"}}`

func writeEvent(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))
	return path
}

func TestReadEvent(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		raw, err := readEvent(nil, writeEvent(t, healthEvent))
		require.NoError(t, err)
		require.JSONEq(t, healthEvent, string(raw))
	})

	t.Run("stdin", func(t *testing.T) {
		raw, err := readEvent(strings.NewReader(healthEvent), "-")
		require.NoError(t, err)
		require.JSONEq(t, healthEvent, string(raw))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readEvent(nil, filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open event file")
	})

	t.Run("not json", func(t *testing.T) {
		_, err := readEvent(strings.NewReader("GET /health"), "-")
		require.Error(t, err)
		require.Equal(t, utils.ErrInvalid, errors.Cause(err))
	})
}

func TestInvokeCommand(t *testing.T) {
	t.Setenv(config.SettingsFileEnv, "")
	t.Setenv("FUNCTION_LOG_LEVEL", "error")

	for name, tc := range map[string]struct {
		event        string
		expectStatus int
		expectBody   string
	}{
		"health":      {healthEvent, http.StatusOK, "OK"},
		"ping":        {`{"httpMethod":"GET","path":"/ping"}`, http.StatusOK, "{}"},
		"not found":   {`{"httpMethod":"GET","path":"/nope"}`, http.StatusNotFound, "GET /nope: not found\n"},
		"unsupported": {`{"Records":[]}`, http.StatusBadRequest, "unsupported event type"},
	} {
		t.Run(name, func(t *testing.T) {
			out := &bytes.Buffer{}
			rootCmd.SetOut(out)
			rootCmd.SetArgs([]string{"invoke", "--event", writeEvent(t, tc.event), "--output", "json"})
			require.NoError(t, rootCmd.Execute())

			var resp struct {
				StatusCode int    `json:"statusCode"`
				Body       string `json:"body"`
			}
			require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
			require.Equal(t, tc.expectStatus, resp.StatusCode)
			require.Equal(t, tc.expectBody, resp.Body)
		})
	}
}

func TestInvokeCommandYAML(t *testing.T) {
	t.Setenv(config.SettingsFileEnv, "")
	t.Setenv("FUNCTION_LOG_LEVEL", "error")

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"invoke", "--event", writeEvent(t, healthEvent), "-o", "yaml"})
	require.NoError(t, rootCmd.Execute())

	var resp map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &resp))
	require.Equal(t, 200, resp["statusCode"])
	require.Equal(t, "OK", resp["body"])

	rootCmd.SetArgs([]string{"invoke", "--event", writeEvent(t, healthEvent), "-o", "xml"})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Equal(t, utils.ErrInvalid, errors.Cause(err))
}

func TestFormatResponse(t *testing.T) {
	resp := map[string]interface{}{"statusCode": 201, "body": "made"}

	out, err := formatResponse(resp, outputJSON)
	require.NoError(t, err)
	require.JSONEq(t, `{"statusCode":201,"body":"made"}`, out)

	out, err = formatResponse(resp, outputYAML)
	require.NoError(t, err)
	require.Equal(t, "body: made\nstatusCode: 201", out)
}

func TestRunServer(t *testing.T) {
	conf := config.Default()
	conf.LogLevel = "error"
	h, err := newEntryPoint(conf).Handler()
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, l, h)
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + l.Addr().String() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK", string(body))

	cancel()
	require.NoError(t, <-done)
}
