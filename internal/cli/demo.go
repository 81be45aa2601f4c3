// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/server"
)

// HandleDemo serves an in-memory portal with generated records until
// interrupted. It is the server the client is developed against.
func HandleDemo(args Args, w io.Writer) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: !ColorsEnabled()}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()
	if args.Quiet {
		log = log.Level(zerolog.WarnLevel)
	}

	p := server.New(server.WithLogger(log))
	if args.Seed > 0 {
		p.Seed(args.Seed, time.Now().UnixNano())
	}

	fmt.Fprintln(w, TitleStyle.Render("EduPortal demo server"))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Listening"), args.Addr)
	fmt.Fprintf(w, "%s%s / %s\n", RenderLabel("Administrator"), server.AdminUsername, server.DefaultAdminPassword)
	fmt.Fprintln(w, DimStyle.Render("Press Ctrl+C to stop."))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- p.ListenAndServe(args.Addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Shutdown(shutdownCtx)
}
