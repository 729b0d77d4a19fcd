package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/transitlab/railcast/internal/config"
)

// apiClient talks to a running server from the client subcommands.
type apiClient struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

// newAPIClient resolves the server address for the client subcommands.
// A missing or broken config file falls back to defaults here; only
// serve insists on a valid one.
func newAPIClient() *apiClient {
	cfg := config.LoadOrDefault(flagConfig)

	host := cfg.Server.Host
	if flagHost != "" {
		host = flagHost
	}
	if host == "0.0.0.0" || host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Server.Port
	if flagPort != 0 {
		port = flagPort
	}

	return &apiClient{
		baseURL:  fmt.Sprintf("http://%s:%d", host, port),
		user:     flagUser,
		password: flagPassword,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *apiClient) post(path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(http.MethodPost, path, body, out)
}

func (c *apiClient) do(method, path string, body []byte, out any) error {
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}

// printResult renders a response either as indented JSON (--json) or via
// the command's own formatter.
func printResult(data any, human func()) {
	if flagJSON {
		enc := json.NewEncoder(rootCmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(data)
		return
	}
	human()
}
