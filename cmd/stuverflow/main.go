package main

import (
	"context"
	"log"

	"github.com/stuverflow/stuverflow-go/internal/cli"
	"github.com/stuverflow/stuverflow-go/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
