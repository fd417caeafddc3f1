package replay

import (
	"fmt"
	"sync"

	"github.com/sarchlab/memshim/memsys"
	"github.com/sarchlab/memshim/recording"
	"github.com/sarchlab/memshim/shim"
)

// transactionTable is the recording table that holds one row per completed
// transaction.
const transactionTable = "transactions"

type transactionRow struct {
	Addr         uint64
	IsWrite      bool
	IssueTick    uint64
	CompleteTick uint64
}

// Stats is a point-in-time snapshot of a running replay, safe to read from
// another goroutine through Runner.Stats.
type Stats struct {
	Tick      uint64 `json:"tick"`
	Issued    uint64 `json:"issued"`
	Completed uint64 `json:"completed"`
	Inflight  int    `json:"inflight"`
	Done      bool   `json:"done"`
}

// Summary describes a finished replay.
type Summary struct {
	Ticks      uint64
	Issued     uint64
	Completed  uint64
	AvgLatency float64
}

// A Runner issues trace requests into a Wrapper cycle by cycle and polls the
// per-tick completion set to measure each transaction's latency. A request
// whose key (address, direction) is already outstanding is held back until
// the earlier transaction completes, since completions are keyed by
// transaction identity within a tick.
type Runner struct {
	wrapper  *shim.Wrapper
	recorder recording.Recorder
	requests []Request
	maxTicks uint64

	statsLock sync.RWMutex
	stats     Stats
}

// Builder can build Runners.
type Builder struct {
	wrapper  *shim.Wrapper
	recorder recording.Recorder
	requests []Request
	maxTicks uint64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithWrapper sets the wrapper that drives the engine.
func (b Builder) WithWrapper(w *shim.Wrapper) Builder {
	b.wrapper = w
	return b
}

// WithRecorder sets the recorder that stores per-transaction latencies. A
// nil recorder disables recording.
func (b Builder) WithRecorder(r recording.Recorder) Builder {
	b.recorder = r
	return b
}

// WithRequests sets the trace requests to replay.
func (b Builder) WithRequests(requests []Request) Builder {
	b.requests = requests
	return b
}

// WithMaxTicks bounds the replay. Zero means no bound.
func (b Builder) WithMaxTicks(n uint64) Builder {
	b.maxTicks = n
	return b
}

// Build creates the Runner.
func (b Builder) Build() *Runner {
	if b.wrapper == nil {
		panic("replay: Runner built without a wrapper")
	}

	r := &Runner{
		wrapper:  b.wrapper,
		recorder: b.recorder,
		requests: b.requests,
		maxTicks: b.maxTicks,
	}

	if r.recorder != nil {
		r.recorder.CreateTable(transactionTable, transactionRow{})
	}

	return r
}

// Stats returns a snapshot of the replay's progress.
func (r *Runner) Stats() Stats {
	r.statsLock.RLock()
	defer r.statsLock.RUnlock()

	return r.stats
}

// Run replays the trace to completion. It returns an error if maxTicks
// elapses with transactions still outstanding.
func (r *Runner) Run() (Summary, error) {
	next := 0
	outstanding := make(map[memsys.Transaction]uint64)

	var tick, issued, completed, totalLatency uint64

	for next < len(r.requests) || len(outstanding) > 0 {
		if r.maxTicks > 0 && tick >= r.maxTicks {
			return r.summarize(tick, issued, completed, totalLatency),
				fmt.Errorf(
					"replay: %d transactions outstanding and %d not issued "+
						"after %d ticks",
					len(outstanding), len(r.requests)-next, tick)
		}

		next, issued = r.issue(next, tick, issued, outstanding)

		r.wrapper.ClockTick()
		tick++

		completed, totalLatency =
			r.poll(tick, completed, totalLatency, outstanding)

		r.publishStats(Stats{
			Tick:      tick,
			Issued:    issued,
			Completed: completed,
			Inflight:  len(outstanding),
		})
	}

	if r.recorder != nil {
		r.recorder.Flush()
	}

	r.publishStats(Stats{
		Tick:      tick,
		Issued:    issued,
		Completed: completed,
		Done:      true,
	})

	return r.summarize(tick, issued, completed, totalLatency), nil
}

func (r *Runner) issue(
	next int,
	tick, issued uint64,
	outstanding map[memsys.Transaction]uint64,
) (int, uint64) {
	for next < len(r.requests) && r.requests[next].Cycle <= tick {
		req := r.requests[next]
		key := memsys.Transaction{Address: req.Addr, IsWrite: req.IsWrite}

		if _, dup := outstanding[key]; dup {
			break
		}

		if !r.wrapper.WillAcceptTransaction(req.Addr, req.IsWrite) {
			break
		}

		r.wrapper.AddTransaction(req.Addr, req.IsWrite)
		outstanding[key] = tick
		issued++
		next++
	}

	return next, issued
}

func (r *Runner) poll(
	tick, completed, totalLatency uint64,
	outstanding map[memsys.Transaction]uint64,
) (uint64, uint64) {
	for key, issueTick := range outstanding {
		if !r.wrapper.IsTransactionDone(key.Address, key.IsWrite) {
			continue
		}

		if r.recorder != nil {
			r.recorder.Insert(transactionTable, transactionRow{
				Addr:         key.Address,
				IsWrite:      key.IsWrite,
				IssueTick:    issueTick,
				CompleteTick: tick,
			})
		}

		completed++
		totalLatency += tick - issueTick
		delete(outstanding, key)
	}

	return completed, totalLatency
}

func (r *Runner) summarize(
	ticks, issued, completed, totalLatency uint64,
) Summary {
	s := Summary{
		Ticks:     ticks,
		Issued:    issued,
		Completed: completed,
	}

	if completed > 0 {
		s.AvgLatency = float64(totalLatency) / float64(completed)
	}

	return s
}

func (r *Runner) publishStats(s Stats) {
	r.statsLock.Lock()
	r.stats = s
	r.statsLock.Unlock()
}
