package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
)

const DEFAULT_TIMEOUT = 30 * time.Second

// invalidMarker is how etherscan-family explorers flag a bad or missing API key in result.
const invalidMarker = "Invalid"

// Client talks to an etherscan-compatible block explorer API.
type Client struct {
	baseURL    string
	apiKey     string
	name       string
	httpClient *http.Client
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func NewClient(network common.Network, baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = network.DefaultExplorerURL()
	}
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		name:       network.ExplorerName(),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetBlockNumberByTime returns the last block mined at or before timestamp.
func (c *Client) GetBlockNumberByTime(ctx context.Context, timestamp int64) (uint64, error) {
	query := url.Values{}
	query.Set("module", "block")
	query.Set("action", "getblocknobytime")
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("closest", "before")
	query.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/api?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create explorer request")
	}

	log.Debug().Str("explorer", c.name).Int64("timestamp", timestamp).Msg("Requesting block number by time")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &common.NetworkError{Op: c.name + " getblocknobytime", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &common.NetworkError{Op: c.name + " getblocknobytime", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &common.NetworkError{
			Op:  c.name + " getblocknobytime",
			Err: errors.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return c.parseResult(body)
}

func (c *Client) parseResult(body []byte) (uint64, error) {
	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, &common.MalformedResponseError{Op: c.name + " getblocknobytime", Reason: err.Error()}
	}

	result := strings.TrimSpace(string(parsed.Result))
	var asString string
	if err := json.Unmarshal(parsed.Result, &asString); err == nil {
		result = strings.TrimSpace(asString)
	}

	if strings.Contains(result, invalidMarker) {
		return 0, errors.Wrapf(common.ErrAuthentication, "%s: %s", c.name, result)
	}

	blockNumber, err := strconv.ParseUint(result, 10, 64)
	if err != nil {
		reason := fmt.Sprintf("result %q is not a block number", result)
		if parsed.Message != "" {
			reason = fmt.Sprintf("%s (%s)", reason, parsed.Message)
		}
		return 0, &common.MalformedResponseError{Op: c.name + " getblocknobytime", Reason: reason}
	}
	return blockNumber, nil
}
