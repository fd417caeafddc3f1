// Package replay drives a wrapped memory-system engine with a memory trace,
// recording per-transaction latencies.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A Request is one line of a memory trace: a transaction and the earliest
// cycle at which it may be issued.
type Request struct {
	Addr    uint64
	IsWrite bool
	Cycle   uint64
}

// ParseTrace reads a memory trace. Each line is
//
//	ADDRESS READ|WRITE [CYCLE]
//
// where ADDRESS is hexadecimal (with or without the 0x prefix) and CYCLE
// defaults to 0. Blank lines and lines starting with # are skipped.
// Requests must appear in non-decreasing cycle order.
func ParseTrace(r io.Reader) ([]Request, error) {
	var requests []Request

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		req, err := parseTraceLine(line)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", lineNum, err)
		}

		if len(requests) > 0 && req.Cycle < requests[len(requests)-1].Cycle {
			return nil, fmt.Errorf(
				"trace line %d: cycle %d is out of order",
				lineNum, req.Cycle)
		}

		requests = append(requests, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// ParseTraceFile reads a memory trace from a file.
func ParseTraceFile(path string) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseTrace(f)
}

func parseTraceLine(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return Request{}, fmt.Errorf("expected 2 or 3 fields, got %d",
			len(fields))
	}

	addrField := fields[0]
	if !strings.HasPrefix(addrField, "0x") &&
		!strings.HasPrefix(addrField, "0X") {
		addrField = "0x" + addrField
	}

	addr, err := strconv.ParseUint(addrField, 0, 64)
	if err != nil {
		return Request{}, fmt.Errorf("invalid address %q", fields[0])
	}

	req := Request{Addr: addr}

	switch strings.ToUpper(fields[1]) {
	case "READ", "R":
		req.IsWrite = false
	case "WRITE", "W":
		req.IsWrite = true
	default:
		return Request{}, fmt.Errorf("invalid direction %q", fields[1])
	}

	if len(fields) == 3 {
		cycle, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return Request{}, fmt.Errorf("invalid cycle %q", fields[2])
		}

		req.Cycle = cycle
	}

	return req, nil
}
