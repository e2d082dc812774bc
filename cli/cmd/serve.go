package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/cli/render"
	"github.com/justapithecus/filebridge/demo"
	"github.com/justapithecus/filebridge/iox"
	"github.com/justapithecus/filebridge/server"
	"github.com/justapithecus/filebridge/types"
)

// ServeCommand runs the HTTP API until interrupted.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default :5000)", EnvVars: []string{"FILEBRIDGE_ADDR"}},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(e)

	addr := e.cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	srv, err := server.New(server.Options{
		Pipeline: e.pipeline,
		Metrics:  e.metrics,
		Logger:   e.logger,
		Version:  types.Version,
	})
	if err != nil {
		return err
	}

	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, server.Config{
		Addr:         addr,
		ReadTimeout:  e.cfg.Server.ReadTimeout.Duration,
		WriteTimeout: e.cfg.Server.WriteTimeout.Duration,
	}); err != nil {
		return cli.Exit(err.Error(), exitIO)
	}
	return nil
}

// DemoCommand seeds System A with today's sample inputs.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:   "demo",
		Usage:  "Create today's sample input files in System A",
		Flags:  ReadOnlyFlags(),
		Action: demoAction,
	}
}

func demoAction(c *cli.Context) error {
	if err := rejectTUI(c, "demo"); err != nil {
		return err
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(e)

	p := e.pipeline
	res, err := demo.Seed(c.Context, p.Source(), p.Registry(), p.Today())
	if err != nil {
		return cli.Exit(err.Error(), exitIO)
	}
	return r.Render(res)
}
