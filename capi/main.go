// This package builds memshim's C function table, so that host programs in
// other languages can drive a wrapped engine through primitive-typed calls.
// Build it with:
//
//	go build -buildmode=c-shared -o libmemshim.so ./capi
//
// Handles returned by memshim_create are opaque and must be released with
// memshim_destroy exactly once; using a handle after destroying it, or
// destroying it twice, is a caller error and aborts the process.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"fmt"
	"os"
	"runtime/cgo"

	_ "github.com/sarchlab/memshim/engines/fixedlatency"
	"github.com/sarchlab/memshim/shim"
)

//export memshim_create
func memshim_create(engine, configFile, outputDir *C.char) C.uintptr_t {
	w, err := shim.MakeBuilder().
		WithEngine(C.GoString(engine)).
		WithConfigFile(C.GoString(configFile)).
		WithOutputDir(C.GoString(outputDir)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "memshim: %s\n", err)
		return 0
	}

	return C.uintptr_t(cgo.NewHandle(w))
}

//export memshim_destroy
func memshim_destroy(h C.uintptr_t) {
	handle := cgo.Handle(h)

	if err := handle.Value().(*shim.Wrapper).Close(); err != nil {
		fmt.Fprintf(os.Stderr, "memshim: %s\n", err)
	}

	handle.Delete()
}

//export memshim_add_transaction
func memshim_add_transaction(h C.uintptr_t, addr C.uint64_t, isWrite C.bool) {
	wrapper(h).AddTransaction(uint64(addr), bool(isWrite))
}

//export memshim_will_accept_transaction
func memshim_will_accept_transaction(
	h C.uintptr_t,
	addr C.uint64_t,
	isWrite C.bool,
) C.bool {
	return C.bool(wrapper(h).WillAcceptTransaction(uint64(addr), bool(isWrite)))
}

//export memshim_clock_tick
func memshim_clock_tick(h C.uintptr_t) {
	wrapper(h).ClockTick()
}

//export memshim_is_transaction_done
func memshim_is_transaction_done(
	h C.uintptr_t,
	addr C.uint64_t,
	isWrite C.bool,
) C.bool {
	return C.bool(wrapper(h).IsTransactionDone(uint64(addr), bool(isWrite)))
}

func wrapper(h C.uintptr_t) *shim.Wrapper {
	return cgo.Handle(h).Value().(*shim.Wrapper)
}

func main() {}
