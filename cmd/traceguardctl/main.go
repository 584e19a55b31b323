package main

import (
	"context"
	"flag"

	"github.com/Vinithareddy09/TraceGuard/internal/client/cli"
)

func main() {
	server := flag.String("s", "http://localhost:8080", "server base URL")
	flag.Parse()

	app := cli.NewApp(*server)
	app.Run(context.Background())
}
