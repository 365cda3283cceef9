package main

import (
	"context"
	"fmt"
	"os"

	"github.com/streamgate/backend/internal/app"
)

func main() {
	ctx := context.Background()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "streamgate: %v\n", err)
		os.Exit(1)
	}
}
