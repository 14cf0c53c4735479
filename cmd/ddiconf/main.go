package main

import (
	"os"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/internal/cli"
	"github.com/crmarques/ddiconf/internal/providers/config/file"
	httpserver "github.com/crmarques/ddiconf/internal/providers/server/http"
	"github.com/crmarques/ddiconf/server"
)

func main() {
	if err := cli.Execute(newDependencies()); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}

func newDependencies() cli.Dependencies {
	return cli.Dependencies{
		Contexts:  file.NewFileContextService(""),
		NewClient: newPlatformClient,
	}
}

func newPlatformClient(cfg config.Context) (server.Client, error) {
	gateway, err := httpserver.NewGateway(cfg.Platform)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}
