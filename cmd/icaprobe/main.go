// Command icaprobe evaluates whether a CI dataset artifact has independent,
// non-Gaussian features and prints the outcome as JSON.
//
// Usage:
//
//	icaprobe run --input probe.yaml [--token T] [--max-components 20] [--seed 0]
//	             [--max-iter 200] [--tol 1e-4] [--plot-dir DIR] [--log-level info]
//
// Exit status is 0 when the dataset is considered good, 1 when it might not be
// optimal and 2 for any error outcome.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
