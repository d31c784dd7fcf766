// Command counsel analyses a contract from the terminal.
//
//	counsel analyze [-verbose] [-json] [-blob] [-config path] <path>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/counsel/internal/infrastructure"
)

// Exit codes.
const (
	exitOK       = 0
	exitPipeline = 1
	exitUsage    = 2
)

const usage = `usage: counsel analyze [-verbose] [-json] [-blob] [-config path] <path>`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, infrastructure.Options{})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, opts infrastructure.Options) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return exitUsage
	}

	switch args[0] {
	case "analyze", "analyse":
		return analyze(ctx, args[1:], stdout, stderr, opts)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return exitOK
	}

	fmt.Fprintf(stderr, "unknown command %q\n%s\n", args[0], usage)
	return exitUsage
}
