package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/bookshelf/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	apiURL := flag.String("api", "", "collection URL, e.g. http://127.0.0.1:3000/books (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, APIURL: *apiURL}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "bookshelf: %v\n", err)
		return 1
	}
	return 0
}
