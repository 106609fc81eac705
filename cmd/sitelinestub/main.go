package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fieldscope/siteline/internal/stub"
)

func main() {
	addr := flag.String("addr", ":8480", "listen address")
	token := flag.String("token", "dev-token", "API token the stub accepts")
	seed := flag.Bool("seed", true, "seed demo visits and comments")
	flag.Parse()

	srv := stub.New(*token)
	if *seed {
		srv.SeedDemo()
	}

	fmt.Fprintf(os.Stderr, "stub backend listening on %s (token %q)\n", *addr, *token)
	if err := srv.Listen(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
