package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

var runOpts struct {
	addr       string
	noTray     bool
	exitOnStop bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the camera and gesture control",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMudra(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.addr, "addr", "", "dashboard listen address, empty to use the configured one")
	runCmd.Flags().BoolVar(&runOpts.noTray, "no-tray", false, "do not show the tray menu")
	runCmd.Flags().BoolVar(&runOpts.exitOnStop, "exit-on-stop", false, "exit once gesture control is stopped")
	rootCmd.AddCommand(runCmd)
}

func runMudra(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if runOpts.addr != "" {
		cfg.HTTPAddr = runOpts.addr
	}

	var tr *tray.Tray
	if cfg.Tray && !runOpts.noTray {
		tr = tray.New()
	}

	hub := server.NewFrameHub()
	progress := newCalibrationProgress(os.Stderr)

	a, err := app.Build(cfg, st, app.Options{
		OnFrame: hub.Publish,
		OnStatus: func(s engine.Status) {
			progress.Update(s)
			if tr != nil {
				tr.SetStatus(s)
			}
		},
		ExitOnStop: runOpts.exitOnStop,
	})
	if err != nil {
		return err
	}
	eng := a.Engine()

	if cfg.HTTPAddr != "" {
		srv := server.New(server.Config{
			StaticDir: findWebDir(cfg.WebDir, cfg.DataDir),
			Store:     st,
			Engine:    eng,
			Frames:    hub,
			Plugins:   a.PluginManager(),
		})
		go func() {
			log.Printf("Dashboard on %s", dashboardURL(cfg.HTTPAddr))
			if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
		a.OnClose(func() error {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if tr == nil {
		return a.Run(ctx)
	}

	tr.OnRecalibrate(func() { eng.Submit(engine.CommandStartCalibration) })
	tr.OnStop(func() { eng.Submit(engine.CommandStop) })
	tr.OnDashboard(func() {
		if cfg.HTTPAddr == "" {
			log.Println("Dashboard is disabled")
			return
		}
		if err := openBrowser(dashboardURL(cfg.HTTPAddr)); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})
	tr.OnQuit(cancel)

	errc := make(chan error, 1)
	go func() {
		errc <- a.Run(ctx)
		tr.Quit()
	}()
	tr.Run()
	cancel()
	return <-errc
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// findWebDir returns the dashboard's static directory: the configured one,
// then "web" near the working directory, then <data dir>/web. Empty if none exists.
func findWebDir(configured, dataDir string) string {
	candidates := []string{configured, "web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
