package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/client"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/config"
)

func main() {
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	api := client.NewAPIClient(cfg.Client)
	cli := client.NewCLI(api, os.Stdin, os.Stdout)

	code := cli.Run(ctx)
	stop()
	os.Exit(code)
}
