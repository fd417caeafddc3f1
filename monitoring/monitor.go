// Package monitoring can turn a replay into a server and allows external
// observation of its progress and resource usage.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/memshim/replay"
)

// Monitor exposes a running replay over HTTP.
type Monitor struct {
	runner      *replay.Runner
	portNumber  int
	openBrowser bool
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in a browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterRunner registers the replay to be monitored.
func (m *Monitor) RegisterRunner(r *replay.Runner) {
	m.runner = r
}

// StartServer starts the monitor as a web server on the configured port, or
// a random port if none was configured.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring replay with %s\n", url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(url + "/api/status")
		dieOnErr(err)
	}
}

// profileDuration is how long /api/profile samples the CPU before
// returning the parsed profile.
const profileDuration = time.Second

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	serveJSON(w, m.runner.Stats())
}

// resourceRsp pairs the replay's progress with the process's resource
// usage, so one poll of /api/resource tells how much work the ticks cost.
type resourceRsp struct {
	Replay     replay.Stats `json:"replay"`
	CPUPercent float64      `json:"cpu_percent"`
	MemorySize uint64       `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	rsp, err := m.resourceSnapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	serveJSON(w, rsp)
}

func (m *Monitor) resourceSnapshot() (resourceRsp, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return resourceRsp{}, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return resourceRsp{}, err
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return resourceRsp{}, err
	}

	return resourceRsp{
		Replay:     m.runner.Stats(),
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	}, nil
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	prof, err := sampleCPUProfile(profileDuration)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	serveJSON(w, prof)
}

func sampleCPUProfile(d time.Duration) (*profile.Profile, error) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		return nil, err
	}

	time.Sleep(d)
	pprof.StopCPUProfile()

	return profile.ParseData(buf.Bytes())
}

func serveJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
