package main

import (
	"context"
	"log"
	"os"

	"files-manager-api/internal"
)

func main() {
	ctx := context.Background()

	app, err := internal.NewApp(ctx)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer app.Close()

	if err = app.Init(ctx); err != nil {
		app.Logger().Sugar().Errorf("filesmanagerapi init failed: %v", err)
		app.Close()
		os.Exit(1)
	}

	if err = app.Run(ctx); err != nil {
		app.Logger().Sugar().Errorf("filesmanagerapi stopped with error: %v", err)
		app.Close()
		os.Exit(1)
	}
}
