// Package memsys defines the boundary between memshim and the memory-system
// engines it drives. An engine is a tick-driven simulator (typically a
// cycle-accurate DRAM model) that accepts transactions, advances one cycle at
// a time, and reports completions through callbacks.
package memsys

// A Transaction identifies a single memory request by address and direction.
// A Transaction is only unique within one clock tick; the same address may be
// accessed again in later ticks.
type Transaction struct {
	Address uint64
	IsWrite bool
}

// Callbacks carries the completion notifications that an engine delivers
// while processing a clock tick. Engines must invoke these synchronously,
// within the same ClockTick call that completes the transaction. Either
// callback may be nil, in which case the corresponding completions are
// silently discarded.
type Callbacks struct {
	ReadComplete  func(addr uint64)
	WriteComplete func(addr uint64)
}

// An Engine is a tick-driven memory system. Engines are created through a
// Factory and are exclusively owned by their creator. Engines are not safe
// for concurrent use.
type Engine interface {
	// AddTransaction enqueues a transaction into the engine. Callers should
	// check WillAcceptTransaction first; the behavior of enqueueing into a
	// full engine is engine-defined.
	AddTransaction(addr uint64, isWrite bool)

	// WillAcceptTransaction reports whether the engine can currently accept
	// a transaction of the given type. It must not mutate engine state.
	WillAcceptTransaction(addr uint64, isWrite bool) bool

	// ClockTick advances the engine by one cycle. Completion callbacks for
	// every transaction that finishes during this cycle must fire before
	// ClockTick returns.
	ClockTick()

	// Close releases the resources owned by the engine. Close must be called
	// exactly once, after which the engine must not be used.
	Close() error
}

// A Factory creates an engine instance. The configuration file and the
// output directory are in formats defined by the engine itself; memshim
// passes them through without interpretation.
type Factory func(configFile, outputDir string, cb Callbacks) (Engine, error)
