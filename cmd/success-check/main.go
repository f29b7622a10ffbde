// cmd/success-check/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/SyedDaiam9101/success-detector/internal/app"
	"github.com/SyedDaiam9101/success-detector/internal/config"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	req, err := app.ParseArgs(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stdout, app.Usage())
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, app.Usage())
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	o := app.NewOrchestrator(stdout)
	o.TraceOutput = stderr

	if _, err := o.Run(ctx, req); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if config.IsNotFound(err) {
			fmt.Fprintf(stderr, "Hint: create %s or point --config at an existing file\n", req.ConfigPath)
		}
		return exitError
	}
	return exitOK
}
