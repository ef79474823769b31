package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/speeddial/internal/adapter/driven/linkwarden"
	"github.com/ericfisherdev/speeddial/internal/adapter/driving/cli"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{
		Version: version,
		NewGateway: func(logger *slog.Logger) driven.LinkwardenGateway {
			return linkwarden.NewClient(logger)
		},
	}, os.Args[1:])
	stop()
	os.Exit(code)
}
