package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// BlockRange is an inclusive range of block numbers.
type BlockRange struct {
	FromBlock uint64 `json:"fromBlock"`
	ToBlock   uint64 `json:"toBlock"`
}

func NewBlockRange(from, to uint64) (BlockRange, error) {
	if from > to {
		return BlockRange{}, errors.Errorf("invalid block range: from block %d is after to block %d", from, to)
	}
	return BlockRange{FromBlock: from, ToBlock: to}, nil
}

func (r BlockRange) String() string {
	return fmt.Sprintf("%d-%d", r.FromBlock, r.ToBlock)
}
