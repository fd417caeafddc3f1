package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memshim/engines/fixedlatency"
	"github.com/sarchlab/memshim/monitoring"
	"github.com/sarchlab/memshim/recording"
	"github.com/sarchlab/memshim/replay"
	"github.com/sarchlab/memshim/shim"
)

var (
	replayEngine      string
	replayConfigFile  string
	replayOutputDir   string
	replayTraceFile   string
	replayMaxTicks    uint64
	replayMonitorOn   bool
	replayMonitorPort int

	replayMonitorBrowser bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a memory trace against an engine",
	Long: `Replay parses a memory trace (lines of "ADDRESS READ|WRITE ` +
		`[CYCLE]"), drives the selected engine cycle by cycle, and records ` +
		`per-transaction latencies into an SQLite database in the output ` +
		`directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		runReplay()
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayEngine, "engine",
		fixedlatency.EngineName, "name of the engine to drive")
	replayCmd.Flags().StringVar(&replayConfigFile, "config", "",
		"engine configuration file (format defined by the engine)")
	replayCmd.Flags().StringVar(&replayOutputDir, "output-dir", ".",
		"directory for engine output and latency recordings")
	replayCmd.Flags().StringVar(&replayTraceFile, "trace", "",
		"memory trace file to replay")
	replayCmd.Flags().Uint64Var(&replayMaxTicks, "max-ticks", 0,
		"abort the replay after this many ticks (0 = no bound)")
	replayCmd.Flags().BoolVar(&replayMonitorOn, "monitor", false,
		"serve replay progress over HTTP")
	replayCmd.Flags().IntVar(&replayMonitorPort, "monitor-port", 0,
		"port for the monitoring server (0 = random)")
	replayCmd.Flags().BoolVar(&replayMonitorBrowser, "monitor-browser", false,
		"open the monitoring page in a browser")

	err := replayCmd.MarkFlagRequired("trace")
	if err != nil {
		panic(err)
	}
}

func runReplay() {
	requests, err := replay.ParseTraceFile(replayTraceFile)
	if err != nil {
		log.Fatal(err)
	}

	err = os.MkdirAll(replayOutputDir, 0o755)
	if err != nil {
		log.Fatal(err)
	}

	wrapper, err := shim.MakeBuilder().
		WithEngine(replayEngine).
		WithConfigFile(replayConfigFile).
		WithOutputDir(replayOutputDir).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	recorder := recording.New(filepath.Join(replayOutputDir,
		"replay_latencies_"+xid.New().String()))

	runner := replay.MakeBuilder().
		WithWrapper(wrapper).
		WithRecorder(recorder).
		WithRequests(requests).
		WithMaxTicks(replayMaxTicks).
		Build()

	if replayMonitorOn {
		monitor := monitoring.NewMonitor()
		if replayMonitorPort > 0 {
			monitor = monitor.WithPortNumber(replayMonitorPort)
		}
		if replayMonitorBrowser {
			monitor = monitor.WithBrowser()
		}
		monitor.RegisterRunner(runner)
		monitor.StartServer()
	}

	summary, err := runner.Run()

	closeErr := wrapper.Close()
	if closeErr != nil {
		log.Fatal(closeErr)
	}

	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("ticks: %d\n", summary.Ticks)
	fmt.Printf("issued: %d\n", summary.Issued)
	fmt.Printf("completed: %d\n", summary.Completed)
	fmt.Printf("avg latency: %.2f\n", summary.AvgLatency)

	atexit.Exit(0)
}
