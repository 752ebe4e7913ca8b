package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
)

const DEFAULT_TIMEOUT = 30 * time.Second

// blockNumber is Int on some subgraphs and BigInt on others, so the bounds are
// formatted into the query instead of passed as variables.
const usersQueryTemplate = `
query getUsers($first: Int!, $skip: Int!) {
  users(first: $first, skip: $skip) {
    id
    transactions(
      where: { blockNumber_gte: %d, blockNumber_lte: %d }
    ) {
      id
      txCost
    }
  }
}`

// Client queries a strategy's subgraph for users and their transactions.
type Client struct {
	url    string
	client *graphql.Client
}

type transactionModel struct {
	ID     string          `json:"id"`
	TxCost json.RawMessage `json:"txCost"`
}

type userModel struct {
	ID           string             `json:"id"`
	Transactions []transactionModel `json:"transactions"`
}

type usersResponse struct {
	Users *[]userModel `json:"users"`
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	httpClient := &http.Client{Timeout: timeout, Transport: statusTransport{next: http.DefaultTransport}}
	client := graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))
	client.Log = func(s string) {
		log.Trace().Str("endpoint", endpoint).Msg(s)
	}
	return &Client{url: endpoint, client: client}
}

func UsersQuery(blockRange common.BlockRange) string {
	return fmt.Sprintf(usersQueryTemplate, blockRange.FromBlock, blockRange.ToBlock)
}

// GetUsers fetches one page of users with their transactions inside blockRange.
func (c *Client) GetUsers(ctx context.Context, blockRange common.BlockRange, first, skip int) ([]common.UserRecord, error) {
	req := graphql.NewRequest(UsersQuery(blockRange))
	req.Var("first", first)
	req.Var("skip", skip)

	var resp usersResponse
	if err := c.client.Run(ctx, req, &resp); err != nil {
		return nil, classify(err)
	}
	if resp.Users == nil {
		return nil, &common.MalformedResponseError{Op: "getUsers", Reason: "missing users field"}
	}
	return toUserRecords(*resp.Users)
}

// StatusError is a non-2xx response from the indexer.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("indexer returned status %d", e.StatusCode)
}

// statusTransport fails requests answered with a non-2xx status before the
// body reaches the GraphQL decoder.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func classify(err error) error {
	var urlErr *url.Error
	var statusErr *StatusError
	if errors.As(err, &urlErr) || errors.As(err, &statusErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &common.NetworkError{Op: "getUsers", Err: err}
	}
	return &common.MalformedResponseError{Op: "getUsers", Reason: err.Error()}
}

func toUserRecords(users []userModel) ([]common.UserRecord, error) {
	records := make([]common.UserRecord, 0, len(users))
	for i, u := range users {
		if u.ID == "" {
			return nil, &common.MalformedResponseError{Op: "getUsers", Reason: fmt.Sprintf("user at index %d has no id", i)}
		}
		txs := make([]common.TransactionRecord, 0, len(u.Transactions))
		for _, tx := range u.Transactions {
			cost, err := parseTxCost(tx.TxCost)
			if err != nil {
				return nil, &common.MalformedResponseError{
					Op:     "getUsers",
					Reason: fmt.Sprintf("user %s transaction %s: %v", u.ID, tx.ID, err),
				}
			}
			txs = append(txs, common.TransactionRecord{ID: tx.ID, Cost: cost})
		}
		records = append(records, common.UserRecord{ID: u.ID, Transactions: txs})
	}
	return records, nil
}

// txCost is a BigInt scalar, serialized as a string by graph-node; plain numbers are accepted too.
func parseTxCost(raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	return common.ParseCost(s)
}
