package transform

import (
	"context"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
)

// CSV parses delimited text with a header row.
type CSV struct {
	Clock clock.Clock
}

// Transform implements Transformer.
func (x *CSV) Transform(ctx context.Context, in Input, c contract.Contract) (result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := result.ParseCSV(in.Data)
	if err != nil {
		return nil, err
	}

	env := tabularEnv{
		source:      in.Name,
		token:       in.Token,
		processedAt: clock.Timestamp(x.Clock.Now()),
	}
	if err := applyTabular(table, c.Rules.Tabular, c.ExpectedColumns, env); err != nil {
		return nil, err
	}
	return table, nil
}
