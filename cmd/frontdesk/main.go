package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bupt-se/hotel-ac-frontdesk/pkg/frontdesk"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "frontdesk: %s\n", frontdesk.DescribeError(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt := &runtime{}
	defer rt.close()
	return newRootCmd(rt).ExecuteContext(ctx)
}
