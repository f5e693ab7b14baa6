// Command wikibot reads and edits a MediaWiki site from the command line.
//
// Usage:
//
//	MEDIAWIKI_SITE=en.wikipedia.org wikibot get "Albert Einstein"
//	wikibot edit "Sandbox" --append "\n* entry" --summary "log" --minor
//	wikibot members Physics --limit 20
//	wikibot whoami
//
// When MEDIAWIKI_USERNAME and MEDIAWIKI_PASSWORD are set every command logs
// in first and logs out when it is done.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp(logger)
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}
