package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fieldscope/siteline/internal/api"
	"github.com/fieldscope/siteline/internal/config"
	"github.com/fieldscope/siteline/internal/feed"
	"github.com/fieldscope/siteline/internal/session"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profile := session.Resolve(*profileFlag)
	if err := session.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "login":
		cmdLogin(profile, args[1:])
	case "fetch":
		cmdFetch(profile, args[1:])
	case "send":
		cmdSend(profile, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: sitelinectl [--profile <name>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login --token <t> [--user <id>] [--name <display>]   Store credentials")
	fmt.Fprintln(os.Stderr, "  fetch <site-id> [--page N] [--page-size N]           Fetch one feed page as JSON")
	fmt.Fprintln(os.Stderr, "  send <visit-id> <text> [--attach <path>]...          Post a comment")
}

func cmdLogin(profile string, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "API token")
	user := fs.String("user", "", "user id")
	name := fs.String("name", "", "display name")
	_ = fs.Parse(args)

	if *token == "" {
		fmt.Fprintln(os.Stderr, "error: --token is required")
		os.Exit(1)
	}

	if err := session.EnsureDir(profile); err != nil {
		fatal(err)
	}
	creds := &session.Credentials{Token: *token, UserID: *user, DisplayName: *name}
	if err := session.SaveCredentials(session.CredentialsPath(profile), creds); err != nil {
		fatal(err)
	}
	fmt.Printf("credentials saved for profile %q\n", profile)
}

func cmdFetch(profile string, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sitelinectl fetch <site-id> [--page N] [--page-size N]")
		os.Exit(1)
	}
	siteID := args[0]

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	page := fs.Int("page", 1, "page number (1 = newest)")
	pageSize := fs.Int("page-size", 0, "comments per page (0 = config default)")
	_ = fs.Parse(args[1:])

	client, cfg := newClient(profile)
	if *pageSize == 0 {
		*pageSize = cfg.PageSize
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.FetchSitePage(ctx, siteID, *page, *pageSize)
	if err != nil {
		fatal(err)
	}
	printJSON(resp)
}

func cmdSend(profile string, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sitelinectl send <visit-id> <text> [--attach <path>]...")
		os.Exit(1)
	}
	visitID := args[0]
	text := args[1]

	fs := flag.NewFlagSet("send", flag.ExitOnError)
	var paths stringList
	fs.Var(&paths, "attach", "file to attach (repeatable)")
	_ = fs.Parse(args[2:])

	attachments := make([]feed.Attachment, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			fatal(err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(p))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachments = append(attachments, feed.Attachment{
			Name:      filepath.Base(p),
			MIMEType:  mimeType,
			Size:      info.Size(),
			LocalPath: p,
		})
	}

	client, _ := newClient(profile)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	echo, err := client.PostComment(ctx, visitID, text, attachments)
	if err != nil {
		fatal(err)
	}
	printJSON(echo)
}

func newClient(profile string) (*api.Client, *config.Config) {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		fatal(err)
	}
	creds, err := session.LoadCredentials(session.CredentialsPath(profile))
	if err != nil {
		fatal(fmt.Errorf("no credentials for profile %q (run sitelinectl login): %w", profile, err))
	}
	return api.NewClient(cfg.ServerURL, creds.Token, zap.NewNop()), cfg
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
