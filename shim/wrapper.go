// Package shim adapts callback-notifying memory-system engines into a
// poll-style query interface. The engine pushes completion notifications
// while it processes a clock tick; a Wrapper buffers them in a per-tick
// completion set so that the caller can poll for them after the tick
// returns.
package shim

import (
	"fmt"

	"github.com/sarchlab/memshim/memsys"
)

// Safety breaks for the RunTransaction drive loops. An engine that has not
// accepted a transaction after a million cycles, or completed one after ten
// million, is considered wedged.
const (
	acceptTickLimit   = 1000000
	completeTickLimit = 10000000
)

// A Wrapper owns one engine instance and records which transactions
// completed during the most recent clock tick. The completion set is
// cleared at the start of every ClockTick call, so IsTransactionDone
// answers are valid only until the next tick.
//
// A Wrapper is not safe for concurrent use. One logical caller drives
// ticks serially; in particular, no method may be called while ClockTick
// is running.
type Wrapper struct {
	engine    memsys.Engine
	completed map[memsys.Transaction]struct{}
}

// AddTransaction enqueues a transaction into the engine.
func (w *Wrapper) AddTransaction(addr uint64, isWrite bool) {
	w.engine.AddTransaction(addr, isWrite)
}

// WillAcceptTransaction reports whether the engine can currently accept the
// transaction. It does not mutate state.
func (w *Wrapper) WillAcceptTransaction(addr uint64, isWrite bool) bool {
	return w.engine.WillAcceptTransaction(addr, isWrite)
}

// ClockTick advances the engine by one cycle. The completion set is cleared
// before the engine runs, so that the callbacks firing during this tick
// land in a fresh set. The engine must deliver completion callbacks
// synchronously within its tick; an engine that defers them would make
// IsTransactionDone under-report.
func (w *Wrapper) ClockTick() {
	clear(w.completed)
	w.engine.ClockTick()
}

// IsTransactionDone reports whether a transaction with the given address and
// direction completed during the most recent ClockTick. The answer is reset
// by the next ClockTick call.
func (w *Wrapper) IsTransactionDone(addr uint64, isWrite bool) bool {
	_, done := w.completed[memsys.Transaction{Address: addr, IsWrite: isWrite}]
	return done
}

// RunTransaction drives the engine until the given transaction is accepted
// and then until it completes, returning the number of ticks elapsed. It is
// a convenience for callers that issue one transaction at a time and only
// care about its latency.
func (w *Wrapper) RunTransaction(addr uint64, isWrite bool) (uint64, error) {
	var ticks uint64

	for !w.engine.WillAcceptTransaction(addr, isWrite) {
		w.ClockTick()

		ticks++
		if ticks > acceptTickLimit {
			return ticks, fmt.Errorf(
				"transaction 0x%x not accepted after %d ticks",
				addr, acceptTickLimit)
		}
	}

	w.engine.AddTransaction(addr, isWrite)

	for {
		w.ClockTick()
		ticks++

		if w.IsTransactionDone(addr, isWrite) {
			return ticks, nil
		}

		if ticks > completeTickLimit {
			return ticks, fmt.Errorf(
				"transaction 0x%x not completed after %d ticks",
				addr, ticks)
		}
	}
}

// Close releases the engine. The Wrapper is the single owner of the engine
// handle; Close must be called exactly once, and the Wrapper must not be
// used afterwards.
func (w *Wrapper) Close() error {
	return w.engine.Close()
}

func (w *Wrapper) readComplete(addr uint64) {
	w.completed[memsys.Transaction{Address: addr}] = struct{}{}
}

func (w *Wrapper) writeComplete(addr uint64) {
	w.completed[memsys.Transaction{Address: addr, IsWrite: true}] = struct{}{}
}
