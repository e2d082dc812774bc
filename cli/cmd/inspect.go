package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/cli/render"
	"github.com/justapithecus/filebridge/cli/tui"
	"github.com/justapithecus/filebridge/iox"
	"github.com/justapithecus/filebridge/pipeline"
)

// ContractRow is one contract in the contracts listing.
type ContractRow struct {
	Endpoint       string `json:"endpoint"`
	Format         string `json:"format"`
	InputExpected  string `json:"input_expected"`
	OutputExpected string `json:"output_expected"`
	Description    string `json:"description"`
}

// ContractsCommand lists the registered contracts with today's file names.
func ContractsCommand() *cli.Command {
	return &cli.Command{
		Name:   "contracts",
		Usage:  "List contracts and today's expected file names",
		Flags:  ReadOnlyFlags(),
		Action: contractsAction,
	}
}

func contractsAction(c *cli.Context) error {
	if err := rejectTUI(c, "contracts"); err != nil {
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

	return r.Render(contractRows(e.pipeline))
}

func contractRows(p *pipeline.Pipeline) []ContractRow {
	today := p.Today()
	all := p.Contracts()
	rows := make([]ContractRow, 0, len(all))
	for _, ct := range all {
		rows = append(rows, ContractRow{
			Endpoint:       ct.Endpoint,
			Format:         string(ct.Format),
			InputExpected:  ct.InputName(today),
			OutputExpected: ct.OutputName(today),
			Description:    ct.Description,
		})
	}
	return rows
}

// StatusRow is one contract in the table form of status.
type StatusRow struct {
	Endpoint       string `json:"endpoint"`
	InputExpected  string `json:"input_expected"`
	InputExists    bool   `json:"input_exists"`
	OutputExpected string `json:"output_expected"`
	OutputExists   bool   `json:"output_exists"`
}

// StatusCommand reports both directories and today's per-contract state.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show System A/B listings and today's per-contract file state",
		Flags:  ReadOnlyFlags(),
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(e)

	st, err := e.pipeline.Status(c.Context)
	if err != nil {
		return exitErr(err)
	}
	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatus, st)
	}
	if r.Format() == render.FormatTable {
		return r.Render(statusRows(st))
	}
	return r.Render(st)
}

func statusRows(st *pipeline.Status) []StatusRow {
	rows := make([]StatusRow, 0, len(st.Contracts))
	for _, row := range tui.StatusRows(st) {
		cs := st.Contracts[row[0]]
		rows = append(rows, StatusRow{
			Endpoint:       row[0],
			InputExpected:  cs.InputExpected,
			InputExists:    cs.InputExists,
			OutputExpected: cs.OutputExpected,
			OutputExists:   cs.OutputExists,
		})
	}
	return rows
}

// HistoryCommand lists ledger records for an endpoint.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show recorded processing runs for an endpoint, newest first",
		ArgsUsage: "<endpoint>",
		Flags: append(ReadOnlyFlags(),
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of records (0 = no limit)", Value: 20},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	endpoint, err := requireEndpoint(c)
	if err != nil {
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

	recs, err := e.pipeline.History(c.Context, endpoint, c.Int("limit"))
	if err != nil {
		return exitErr(err)
	}
	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewHistory, recs)
	}
	return r.Render(recs)
}
