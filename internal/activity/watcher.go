package activity

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	ecommon "github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/yo-safe/terminal/internal/evm"
)

const (
	TypeAllocated = "CAPITAL_ALLOCATED"
	TypeWithdrawn = "CAPITAL_WITHDRAWN"

	// providers reject eth_getLogs over wide ranges
	maxBlockRange = 2000
)

type logSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]etypes.Log, error)
}

type Recorder interface {
	RecordEvent(eventType string)
	RecordScan(toBlock uint64)
	RecordPollError()
}

// Watcher polls the manager contract for Deposited and Withdrawn events and
// pushes them to the feed. It starts from the chain head seen on the first poll.
type Watcher struct {
	logger   *logrus.Entry
	rpc      logSource
	manager  ecommon.Address
	feed     *Feed
	recorder Recorder

	lastBlock uint64
}

func NewWatcher(
	logger *logrus.Logger,
	rpc logSource,
	manager ecommon.Address,
	feed *Feed,
	recorder Recorder,
) *Watcher {
	return &Watcher{
		logger:   logger.WithField("pkg", "activity.Watcher"),
		rpc:      rpc,
		manager:  manager,
		feed:     feed,
		recorder: recorder,
	}
}

func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.recorder.RecordPollError()
			w.logger.WithError(err).Warn("failed to poll manager events")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll scans blocks after the last scanned one, at most maxBlockRange at a time.
func (w *Watcher) Poll(ctx context.Context) error {
	head, err := w.rpc.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block number: %w", err)
	}
	if w.lastBlock == 0 {
		w.lastBlock = head
		w.recorder.RecordScan(head)
		return nil
	}
	if head <= w.lastBlock {
		return nil
	}

	from := w.lastBlock + 1
	to := head
	if to-from+1 > maxBlockRange {
		to = from + maxBlockRange - 1
	}

	deposited := evm.ManagerABI.Events["Deposited"].ID
	withdrawn := evm.ManagerABI.Events["Withdrawn"].ID
	logs, err := w.rpc.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []ecommon.Address{w.manager},
		Topics:    [][]ecommon.Hash{{deposited, withdrawn}},
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs [%d, %d]: %w", from, to, err)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	for _, l := range logs {
		entry, ok := toEntry(l)
		if !ok {
			continue
		}
		if w.feed.Push(entry) {
			w.recorder.RecordEvent(entry.Type)
			w.logger.WithFields(logrus.Fields{
				"type":   entry.Type,
				"txHash": entry.TxHash,
				"block":  l.BlockNumber,
			}).Debug("activity observed")
		}
	}

	w.lastBlock = to
	w.recorder.RecordScan(to)
	return nil
}

func toEntry(l etypes.Log) (Entry, bool) {
	if l.Removed || len(l.Topics) < 3 {
		return Entry{}, false
	}

	var typ, status string
	switch l.Topics[0] {
	case evm.ManagerABI.Events["Deposited"].ID:
		typ, status = TypeAllocated, "DEPOSITED"
	case evm.ManagerABI.Events["Withdrawn"].ID:
		typ, status = TypeWithdrawn, "WITHDRAWN"
	default:
		return Entry{}, false
	}

	token := ecommon.BytesToAddress(l.Topics[2].Bytes())
	return Entry{
		ID:      fmt.Sprintf("%s:%d", l.TxHash.Hex(), l.Index),
		TxHash:  l.TxHash.Hex(),
		Type:    typ,
		Message: token.Hex()[:6] + "...",
		Status:  status,
		At:      time.Now().UTC(),
	}, true
}
