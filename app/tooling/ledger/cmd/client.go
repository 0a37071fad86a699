package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// request calls the node and prints the response document.
func request(cmd *cobra.Command, method string, path string, body any) error {
	data, status, err := fetch(cmd, method, path, body)
	if err != nil {
		return err
	}

	if err := printDoc(cmd.OutOrStdout(), data); err != nil {
		return err
	}

	if status != http.StatusOK {
		return fmt.Errorf("node responded with status %d", status)
	}

	return nil
}

// fetch calls the node and returns the raw response document.
func fetch(cmd *cobra.Command, method string, path string, body any) ([]byte, int, error) {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(viper.GetString("node"), "/") + "/v1").
		SetTimeout(viper.GetDuration("timeout")).
		SetHeader("Content-Type", "application/json")

	req := client.R().SetContext(cmd.Context())
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, 0, err
	}

	return resp.Body(), resp.StatusCode(), nil
}

// printDoc writes the document indented, or raw when it isn't JSON.
func printDoc(w io.Writer, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}
