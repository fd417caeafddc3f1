// Package fixedlatency provides a reference memory-system engine that
// completes every accepted transaction a fixed number of cycles after it is
// enqueued. It is not a DRAM model; it exists so that the shim, the replay
// driver, and the tests can run without linking an external simulator,
// similar to an ideal memory controller that responds in a constant number
// of cycles.
package fixedlatency

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/xid"

	"github.com/sarchlab/memshim/memsys"
	"github.com/sarchlab/memshim/recording"
)

// EngineName is the name under which this engine registers itself.
const EngineName = "fixedlatency"

const (
	defaultLatency  = 100
	defaultCapacity = 64
)

func init() {
	memsys.Register(EngineName, NewEngine)
}

type inflight struct {
	trans    memsys.Transaction
	doneTick uint64
}

// An Engine holds a bounded ingress queue and completes each queued
// transaction exactly latency cycles after it was enqueued, invoking the
// completion callbacks from within ClockTick.
type Engine struct {
	latency  uint64
	capacity int
	cb       memsys.Callbacks

	tick  uint64
	queue []inflight

	recorder  recording.Recorder
	numReads  uint64
	numWrites uint64
}

// NewEngine creates an Engine. The configuration file, if given, is a dotenv
// file with LATENCY and QUEUE_CAPACITY entries. If outputDir is given, the
// engine writes a run summary into an SQLite database in that directory when
// it is closed.
func NewEngine(
	configFile, outputDir string,
	cb memsys.Callbacks,
) (memsys.Engine, error) {
	e := &Engine{
		latency:  defaultLatency,
		capacity: defaultCapacity,
		cb:       cb,
	}

	if configFile != "" {
		if err := e.loadConfig(configFile); err != nil {
			return nil, err
		}
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("fixedlatency: %w", err)
		}

		dbPath := filepath.Join(outputDir,
			"fixedlatency_"+xid.New().String())
		e.recorder = recording.New(dbPath)
		e.recorder.CreateTable("run_summary", runSummary{})
	}

	return e, nil
}

type runSummary struct {
	Ticks     uint64
	Reads     uint64
	Writes    uint64
	Latency   uint64
	Remaining int
}

func (e *Engine) loadConfig(configFile string) error {
	env, err := godotenv.Read(configFile)
	if err != nil {
		return fmt.Errorf("fixedlatency: cannot read config: %w", err)
	}

	if v, ok := env["LATENCY"]; ok {
		latency, err := strconv.ParseUint(v, 10, 64)
		if err != nil || latency == 0 {
			return fmt.Errorf("fixedlatency: invalid LATENCY %q", v)
		}

		e.latency = latency
	}

	if v, ok := env["QUEUE_CAPACITY"]; ok {
		capacity, err := strconv.Atoi(v)
		if err != nil || capacity <= 0 {
			return fmt.Errorf("fixedlatency: invalid QUEUE_CAPACITY %q", v)
		}

		e.capacity = capacity
	}

	return nil
}

// AddTransaction enqueues a transaction. It panics if the queue is full;
// callers must check WillAcceptTransaction first.
func (e *Engine) AddTransaction(addr uint64, isWrite bool) {
	if len(e.queue) >= e.capacity {
		panic("fixedlatency: transaction added to a full queue")
	}

	e.queue = append(e.queue, inflight{
		trans:    memsys.Transaction{Address: addr, IsWrite: isWrite},
		doneTick: e.tick + e.latency,
	})

	if isWrite {
		e.numWrites++
	} else {
		e.numReads++
	}
}

// WillAcceptTransaction reports whether the ingress queue has room.
func (e *Engine) WillAcceptTransaction(addr uint64, isWrite bool) bool {
	return len(e.queue) < e.capacity
}

// ClockTick advances the engine one cycle and fires the completion callbacks
// for every transaction whose latency has elapsed.
func (e *Engine) ClockTick() {
	e.tick++

	remaining := e.queue[:0]
	for _, f := range e.queue {
		if f.doneTick > e.tick {
			remaining = append(remaining, f)
			continue
		}

		e.complete(f.trans)
	}

	e.queue = remaining
}

func (e *Engine) complete(trans memsys.Transaction) {
	if trans.IsWrite {
		if e.cb.WriteComplete != nil {
			e.cb.WriteComplete(trans.Address)
		}

		return
	}

	if e.cb.ReadComplete != nil {
		e.cb.ReadComplete(trans.Address)
	}
}

// Close writes the run summary, if recording is enabled.
func (e *Engine) Close() error {
	if e.recorder != nil {
		e.recorder.Insert("run_summary", runSummary{
			Ticks:     e.tick,
			Reads:     e.numReads,
			Writes:    e.numWrites,
			Latency:   e.latency,
			Remaining: len(e.queue),
		})
		e.recorder.Flush()
	}

	return nil
}
