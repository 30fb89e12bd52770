package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"fsanano/stockroom/internal/app"
	"fsanano/stockroom/internal/config"
	"fsanano/stockroom/internal/lambdaproxy"
	"fsanano/stockroom/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialize", "error", err)
		os.Exit(1)
	}

	// The store stays open for the lifetime of the execution environment.
	lambda.Start(lambdaproxy.Handler(a.Handler))
}
