// Package rpc implements the module-fetcher collaborator over a node's REST
// API. It retrieves module bytecode and the exposed-function ABI the composer
// pipeline needs to resolve parameter types.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	movecompose "github.com/branched-services/go-movecompose"
)

// DefaultBaseURL is the mainnet fullnode REST endpoint.
const DefaultBaseURL = "https://api.mainnet.aptoslabs.com/v1"

// ErrModuleNotFound indicates the module does not exist on chain.
var ErrModuleNotFound = errors.New("rpc: module not found")

// StatusError is a non-success response from the node API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rpc: API error (status %d): %s", e.StatusCode, e.Body)
}

// Client fetches module metadata from a node REST endpoint. It implements
// movecompose.ModuleFetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for a node REST endpoint. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// moduleResponse is the node's account-module response shape. abi is absent
// for modules published without metadata.
type moduleResponse struct {
	Bytecode string     `json:"bytecode"`
	ABI      *moduleABI `json:"abi"`
}

type moduleABI struct {
	ExposedFunctions []functionABI `json:"exposed_functions"`
}

type functionABI struct {
	Name   string   `json:"name"`
	Params []string `json:"params"`
}

// FetchModule GETs /accounts/{address}/module/{name} and decodes the
// bytecode and per-function declared parameter types.
func (c *Client) FetchModule(ctx context.Context, id movecompose.ModuleID) (*movecompose.ModuleInfo, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/module/%s", c.baseURL, id.Address.String(), url.PathEscape(id.Name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("rpc: failed to build request for module %s: %w", id, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc: failed to fetch module %s via %s: %w", id, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rpc: failed to read response for module %s: %w", id, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var module moduleResponse
	if err := json.Unmarshal(body, &module); err != nil {
		return nil, fmt.Errorf("rpc: unexpected module response format for %s: %w", id, err)
	}

	bytecodeHex := module.Bytecode
	if !strings.HasPrefix(bytecodeHex, "0x") {
		bytecodeHex = "0x" + bytecodeHex
	}
	bytecode, err := hexutil.Decode(bytecodeHex)
	if err != nil {
		return nil, fmt.Errorf("rpc: failed to decode bytecode for module %s: %w", id, err)
	}

	functions := make(map[string][]string)
	if module.ABI != nil {
		for _, fn := range module.ABI.ExposedFunctions {
			functions[fn.Name] = fn.Params
		}
	}

	return &movecompose.ModuleInfo{
		Bytecode:  bytecode,
		Functions: functions,
	}, nil
}

var _ movecompose.ModuleFetcher = (*Client)(nil)
