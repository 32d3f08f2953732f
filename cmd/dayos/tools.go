package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"dayos/internal/capture"
	appLog "dayos/internal/log"
	"dayos/internal/web"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo meetings, emails and follow-ups",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.store.Seed(cmd.Context(), a.now()); err != nil {
				return err
			}
			fmt.Println("Seeded demo data into", a.cfg.DBPath)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Fetch configured ICS feeds once and store their meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			refresher := a.refresher()
			if refresher == nil {
				return errors.New("no ics sources configured")
			}
			return refresher.Refresh(cmd.Context(), a.now())
		},
	}
}

func snapshotCmd() *cobra.Command {
	var (
		url     string
		out     string
		width   int
		height  int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the agenda page to a PNG with headless Chromium",
		Long: `Render the week agenda to a PNG.

Without --url an API server is started on a loopback port for the
duration of the capture.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if url == "" {
				base, stop, err := a.serveLoopback()
				if err != nil {
					return err
				}
				defer stop()
				url = base + "/agenda"
			}
			if out == "" {
				out = a.cfg.SnapshotPath
			}

			opts := capture.Options{
				URL:        url,
				OutputPath: out,
				Width:      width,
				Height:     height,
				Timeout:    timeout,
			}
			if a.cfg.BasicAuth != nil {
				opts.Username = a.cfg.BasicAuth.Username
				opts.Password = a.cfg.BasicAuth.Password
			}
			if err := capture.CaptureAgendaPNG(ctx, opts); err != nil {
				return err
			}
			fmt.Println("Wrote", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "agenda URL (default: serve locally)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path (default from config)")
	cmd.Flags().IntVar(&width, "width", capture.DefaultWidth, "viewport width")
	cmd.Flags().IntVar(&height, "height", capture.DefaultHeight, "viewport height")
	cmd.Flags().DurationVar(&timeout, "timeout", capture.DefaultTimeoutSec*time.Second, "capture timeout")
	return cmd
}

// serveLoopback runs the API on 127.0.0.1 with a kernel-chosen port and
// returns its base URL.
func (a *app) serveLoopback() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen loopback: %w", err)
	}

	srv := web.NewServer(a.cfg, web.Deps{
		Calendar: a.cal,
		Store:    a.store,
		Tracker:  a.tracker,
		Center:   a.center,
		Clock:    a.now,
	})
	httpSrv := &http.Server{Handler: srv.Handler()}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("loopback server error", err)
		}
	}()

	base := "http://" + ln.Addr().String()
	appLog.Debug("loopback server started", "url", base)
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}
	return base, stop, nil
}
