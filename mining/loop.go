package mining

import (
	"context"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"earthbucks.dev/ebx-miner/consensus"
	"earthbucks.dev/ebx-miner/merkle"
	"earthbucks.dev/ebx-miner/tx"
)

// CoinbaseBuilder produces the next coinbase transaction for a candidate
// block. It is an external collaborator: the core only needs its output's
// id and raw bytes.
type CoinbaseBuilder func(blockNum uint64) tx.Tx

// Loop is the phased, single-threaded mining controller (C7): it ticks
// every second, reconciling the in-memory chain with the persistence port
// and, once no earlier phase has advanced state, assembling and saving the
// next candidate header.
type Loop struct {
	store    Store
	cfg      EnvConfig
	log      *zap.Logger
	coinbase CoinbaseBuilder

	// Clock returns seconds since the Unix epoch. Overridable for tests.
	Clock func() uint64

	chain            *consensus.HeaderChain
	buildingBlockNum uint64
}

func NewLoop(store Store, cfg EnvConfig, log *zap.Logger, coinbase CoinbaseBuilder) *Loop {
	return &Loop{
		store:    store,
		cfg:      cfg,
		log:      log,
		coinbase: coinbase,
		Clock:    func() uint64 { return uint64(time.Now().Unix()) },
		chain:    consensus.NewHeaderChain(nil),
	}
}

// Run ticks the loop at a 1-second cadence until ctx is cancelled or Tick
// returns an error, fatal or propagated.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if err := l.Tick(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one full pass of phases P1-P7, restarting from the top whenever
// P1-P4 materially advance state, per the phase restart policy.
func (l *Loop) Tick() error {
	for {
		advanced, err := l.syncTip()
		if err != nil {
			return err
		}
		if advanced {
			continue
		}

		advanced, err = l.advanceOnVotes()
		if err != nil {
			return err
		}
		if advanced {
			continue
		}

		advanced, err = l.advanceOnBlockValidation()
		if err != nil {
			return err
		}
		if advanced {
			continue
		}

		advanced, err = l.powValidation()
		if err != nil {
			return err
		}
		if advanced {
			continue
		}

		l.ingestTransactions()

		if err := l.produceCandidate(); err != nil {
			return err
		}

		if err := l.cleanup(); err != nil {
			return err
		}

		return nil
	}
}

// P1: sync tip.
func (l *Loop) syncTip() (bool, error) {
	if l.chain.Len() == 0 {
		chain, err := l.store.GetLongestChain()
		if err != nil {
			return false, err
		}
		l.chain = chain
		if n := uint64(l.chain.Len()); n != l.buildingBlockNum {
			l.buildingBlockNum = n
			l.log.Info("loaded chain from storage", zap.Int("len", l.chain.Len()))
		}
		return false, nil
	}

	tipID, ok, err := l.store.GetChainTipID()
	if err != nil {
		return false, err
	}
	if !ok {
		// This loop is assumed to be the only writer of the accepted chain,
		// so memory ahead of storage is fatal and is not healed here.
		return false, fatalf("sync_tip", errMemoryAheadOfStorage)
	}

	tip, _ := l.chain.Tip()
	if tip.ID() == tipID {
		return false, nil
	}

	chain, err := l.store.GetLongestChain()
	if err != nil {
		return false, err
	}
	l.chain = chain
	l.buildingBlockNum = uint64(l.chain.Len())
	l.log.Info("chain tip diverged from memory, reloaded",
		zap.Int("len", l.chain.Len()), zap.String("tip_id", hex.EncodeToString(tipID[:])))
	return false, nil
}

// P2: advance on votes.
func (l *Loop) advanceOnVotes() (bool, error) {
	rows, err := l.store.GetVotingHeaders()
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	h := rows[0]
	id := h.ID()
	if err := l.store.UpdateIsVoteValid(id, true); err != nil {
		return false, fatalf("advance_on_votes", err)
	}
	if err := l.store.SaveAccepted(h); err != nil {
		return false, fatalf("advance_on_votes", err)
	}
	l.log.Debug("accepted voted header", zap.Uint64("block_num", h.BlockNum))
	return true, nil
}

// P3: advance on block validation.
func (l *Loop) advanceOnBlockValidation() (bool, error) {
	rows, err := l.store.GetValidatedHeaders()
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	h := rows[0]
	id := h.ID()
	// Full block validation (transaction rules, spend authorization) is an
	// external collaborator's concern; the core only records the decision.
	valid := true
	if err := l.store.UpdateIsBlockValid(id, valid); err != nil {
		return false, err
	}
	l.log.Debug("recorded block validation", zap.Uint64("block_num", h.BlockNum), zap.Bool("valid", valid))
	return true, nil
}

// P4: PoW validation.
func (l *Loop) powValidation() (bool, error) {
	rows, err := l.store.GetCandidateHeaders()
	if err != nil {
		return false, err
	}
	now := l.Clock()
	for _, h := range rows {
		id := h.ID()
		if l.chain.IsValidAt(h, now) {
			if err := l.store.UpdateIsHeaderValid(id, true); err != nil {
				return false, err
			}
			l.log.Debug("candidate header valid", zap.Uint64("block_num", h.BlockNum))
			return true, nil
		}
		// A PoW-invalid candidate is recorded and skipped, not fatal; the
		// remaining rows are still examined this tick.
		if err := l.store.UpdateIsHeaderValid(id, false); err != nil {
			return false, err
		}
		l.log.Debug("candidate header rejected", zap.Uint64("block_num", h.BlockNum))
	}
	return false, nil
}

// P5: ingest new transactions. Delegated to an external mempool; nothing
// to do at this layer.
func (l *Loop) ingestTransactions() {}

// P6: produce candidate.
func (l *Loop) produceCandidate() error {
	coinbase := l.coinbase(l.buildingBlockNum)
	if _, found, err := l.store.GetParsedTx(coinbase.Id()); err != nil {
		return err
	} else if !found {
		if err := l.store.InsertRawTx(coinbase, l.cfg.Domain); err != nil {
			return fatalf("produce_candidate", err)
		}
	}

	ids := [][32]byte{coinbase.Id()}
	tree, err := merkle.New(ids)
	if err != nil {
		return err
	}
	for _, p := range tree.Iterate() {
		if err := l.store.UpsertMerkleProof(p.Proof, p.ID); err != nil {
			return fatalf("produce_candidate", err)
		}
	}

	now := l.Clock()
	h, err := l.chain.NextHeader(tree.Root, now)
	if err != nil {
		l.log.Info("retarget failed building candidate, will retry next tick", zap.Error(err))
		return nil
	}

	if _, found, err := l.store.GetCandidate(h.ID()); err != nil {
		return err
	} else if found {
		l.log.Debug("candidate already exists, skipping", zap.Uint64("block_num", h.BlockNum))
		return nil
	}

	if err := l.store.SaveCandidate(h); err != nil {
		return fatalf("produce_candidate", err)
	}
	id := h.ID()
	l.log.Info("saved new candidate", zap.Uint64("block_num", h.BlockNum), zap.String("id", hex.EncodeToString(id[:])))
	return nil
}

// P7: cleanup.
func (l *Loop) cleanup() error {
	if err := l.store.DeleteUnusedHeaders(l.buildingBlockNum); err != nil {
		return fatalf("cleanup", err)
	}
	return nil
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const errMemoryAheadOfStorage = sentinelError("mining: in-memory chain tip has no counterpart in storage")
