// Package dblock serialises test binaries that share one Postgres database.
// The lock is a listening TCP socket, so it is dropped with the process even
// when a test binary crashes.
package dblock

import (
	"fmt"
	"net"
	"os"
	"time"
)

const (
	defaultAddr    = "127.0.0.1:45432"
	addrEnv        = "LOTTERY_TEST_DBLOCK_ADDR"
	defaultTimeout = 5 * time.Minute
	retryEvery     = 50 * time.Millisecond
)

// Acquire blocks until the lock is held and returns its release func.
func Acquire() func() {
	release, err := AcquireWithin(defaultTimeout)
	if err != nil {
		panic(err)
	}
	return release
}

// AcquireWithin is Acquire with a bound on the wait.
func AcquireWithin(timeout time.Duration) (func(), error) {
	addr := os.Getenv(addrEnv)
	if addr == "" {
		addr = defaultAddr
	}
	deadline := time.Now().Add(timeout)
	for {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return func() { _ = ln.Close() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("dblock: %s still held after %s: %w", addr, timeout, err)
		}
		time.Sleep(retryEvery)
	}
}
