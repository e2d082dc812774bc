package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/cli/render"
	"github.com/justapithecus/filebridge/iox"
)

// ProcessCommand runs the pipeline for today's input of one endpoint.
func ProcessCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Transform today's System A input for an endpoint into System B",
		ArgsUsage: "<endpoint>",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Print nothing on success"},
		),
		Action: processAction,
	}
}

func processAction(c *cli.Context) error {
	endpoint, err := requireEndpoint(c)
	if err != nil {
		return err
	}
	if err := rejectTUI(c, "process"); err != nil {
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

	rep, err := e.pipeline.Process(c.Context, endpoint)
	if err != nil {
		return exitErr(err)
	}
	if c.Bool("quiet") {
		return nil
	}
	return r.Render(rep)
}

// RetrieveCommand returns today's artifact, reprocessing it when missing.
func RetrieveCommand() *cli.Command {
	return &cli.Command{
		Name:      "retrieve",
		Usage:     "Fetch today's System B artifact for an endpoint (processing it first if missing)",
		ArgsUsage: "<endpoint>",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the raw artifact to this file (- for stdout)"},
		),
		Action: retrieveAction,
	}
}

func retrieveAction(c *cli.Context) error {
	endpoint, err := requireEndpoint(c)
	if err != nil {
		return err
	}
	if err := rejectTUI(c, "retrieve"); err != nil {
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

	ret, err := e.pipeline.Retrieve(c.Context, endpoint)
	if err != nil {
		return exitErr(err)
	}

	out := c.String("out")
	if out == "" {
		return r.Render(ret)
	}

	f, err := e.pipeline.Open(c.Context, endpoint)
	if err != nil {
		return exitErr(err)
	}
	if out == "-" {
		_, err = os.Stdout.Write(f.Data)
		return err
	}
	if err := os.WriteFile(out, f.Data, 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("write %s: %v", out, err), exitIO)
	}
	e.logger.Info("artifact saved", map[string]any{"endpoint": endpoint, "file": f.Name, "out": out, "reprocessed": ret.Reprocessed})
	return nil
}
