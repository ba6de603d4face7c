// Command procurectl is a terminal client for the purchase request API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"procurement/pkg/catalog"
	"procurement/pkg/client"
	"procurement/pkg/dashboard"
	"procurement/pkg/lifecycle"
	"procurement/pkg/session"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

type app struct {
	out io.Writer
	in  *bufio.Reader

	api       *client.Client
	session   *session.Store
	requests  *lifecycle.Manager
	catalog   *catalog.Manager
	dashboard *dashboard.Dashboard
}

func newApp(baseURL string, storage session.Storage, in io.Reader, out io.Writer) (*app, error) {
	store := session.NewStore(storage)
	api := client.New(baseURL, client.WithTokenSource(store), client.WithUnauthorizedHandler(store.Purge))
	store.Bind(api)
	if err := store.Restore(); err != nil {
		return nil, err
	}
	cat := catalog.NewManager(api)
	return &app{
		out:       out,
		in:        bufio.NewReader(in),
		api:       api,
		session:   store,
		requests:  lifecycle.NewManager(api, store, cat),
		catalog:   cat,
		dashboard: dashboard.New(api, store),
	}, nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "procurectl", "session.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	global := flag.NewFlagSet("procurectl", flag.ContinueOnError)
	global.SetInterspersed(false)
	apiURL := global.String("api", envOr("PROCURE_API_URL", "http://localhost:3000/api"), "API base URL")
	sessionPath := global.String("session", envOr("PROCURE_SESSION", defaultSessionPath()), "session file")
	verbose := global.BoolP("verbose", "v", false, "debug logging")
	global.Usage = func() { printUsage(os.Stderr, global) }

	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	a, err := newApp(*apiURL, session.NewFileStorage(*sessionPath), os.Stdin, os.Stdout)
	if err != nil {
		log.WithError(err).Fatal("failed to open session")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "errore:", describe(err))
		os.Exit(1)
	}
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: procurectl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-18s %s\n", c.name, c.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, global.FlagUsages())
}
