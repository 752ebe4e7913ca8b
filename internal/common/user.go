package common

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

type TransactionRecord struct {
	ID   string
	Cost *big.Int
}

type UserRecord struct {
	ID           string
	Transactions []TransactionRecord
}

// Page is one batch of users returned by the indexing service for an offset.
type Page struct {
	Offset int
	Users  []UserRecord
}

// ParseCost parses a non-negative cost given as a decimal or 0x-prefixed hex string.
func ParseCost(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty cost")
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("invalid cost %q", raw)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative cost %q", raw)
	}
	return v, nil
}
