// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package httputils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/mattermost/mattermost-lambda-function/utils"
)

func TestErrorToStatus(t *testing.T) {
	for _, tc := range []struct {
		err    error
		status int
	}{
		{utils.NewNotFoundError("route %s", "/x"), http.StatusNotFound},
		{utils.NewInvalidError(), http.StatusBadRequest},
		{errors.Wrap(utils.ErrUnsupported, "event"), http.StatusBadRequest},
		{utils.NewInitializationError("no startup"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	} {
		t.Run(tc.err.Error(), func(t *testing.T) {
			require.Equal(t, tc.status, ErrorToStatus(tc.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, utils.NewNotFoundError("route %q", "/x"))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "route \"/x\": not found\n", w.Body.String())

	w = httptest.NewRecorder()
	WriteError(w, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDoHandleJSONData(t *testing.T) {
	w := httptest.NewRecorder()
	DoHandleJSONData([]byte("{}"))(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, ContentTypeJSON, w.Header().Get(ContentTypeHeader))
	require.Equal(t, "{}", w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, WriteJSONStatus(w, http.StatusAccepted, map[string]string{"status": "ok"}))
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "{\"status\":\"ok\"}\n", w.Body.String())
}

func TestLimitReadAll(t *testing.T) {
	data, err := LimitReadAll(strings.NewReader("0123456789"), 4)
	require.NoError(t, err)
	require.Equal(t, "0123", string(data))

	data, err = LimitReadAll(nil, 4)
	require.NoError(t, err)
	require.Empty(t, data)

	data, err = ReadAndClose(io.NopCloser(strings.NewReader("abc")))
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))
}
