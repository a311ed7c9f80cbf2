// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mattermost/mattermost-lambda-function/utils"
	"github.com/mattermost/mattermost-lambda-function/utils/httputils"
)

var (
	invokeEvent  string
	invokeOutput string
)

func init() {
	rootCmd.AddCommand(
		invokeCmd,
	)
	invokeCmd.Flags().StringVar(&invokeEvent, "event", "", `file containing the invocation event JSON, or "-" for stdin`)
	_ = invokeCmd.MarkFlagRequired("event")
	invokeCmd.Flags().StringVarP(&invokeOutput, "output", "o", outputJSON, `response format, "json" or "yaml"`)
}

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run a single invocation event through the function and print the response.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if invokeOutput != outputJSON && invokeOutput != outputYAML {
			return utils.NewInvalidError("output format %q", invokeOutput)
		}
		raw, err := readEvent(cmd.InOrStdin(), invokeEvent)
		if err != nil {
			return err
		}

		conf, err := loadConfig()
		if err != nil {
			return err
		}
		resp, err := newEntryPoint(conf).HandleInvocation(cmd.Context(), raw)
		if err != nil {
			return err
		}

		out, err := formatResponse(resp, invokeOutput)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// formatResponse renders an invocation response. YAML output keeps the JSON
// field names of the Lambda event types.
func formatResponse(resp interface{}, format string) (string, error) {
	if format != outputYAML {
		return utils.Pretty(resp), nil
	}

	var v interface{}
	if err := yaml.Unmarshal([]byte(utils.ToJSON(resp)), &v); err != nil {
		return "", errors.Wrap(err, "failed to convert response")
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode response")
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func readEvent(stdin io.Reader, path string) (json.RawMessage, error) {
	var in io.ReadCloser
	if path == "-" {
		in = io.NopCloser(stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open event file")
		}
		in = f
	}

	data, err := httputils.ReadAndClose(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read event")
	}
	if !json.Valid(data) {
		return nil, utils.NewInvalidError("event is not valid JSON")
	}
	return data, nil
}
