package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/fieldscope/siteline/internal/app"
	"github.com/fieldscope/siteline/internal/session"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	siteFlag := flag.String("site", "", "site id to open on startup")
	flag.Parse()

	profile := session.Resolve(*profileFlag)
	if err := session.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fx.New(
		app.Module(app.Params{Profile: profile, SiteID: *siteFlag}),
		fx.NopLogger,
	).Run()
}
