package commands

import (
	"PortfolioCMS/internal/cli/bootstrap"
	"PortfolioCMS/internal/config"
	"context"
	"fmt"
)

type statsCmd struct{}

func (statsCmd) Name() string        { return "stats" }
func (statsCmd) Description() string { return "Пересчитать счётчики всех папок" }
func (statsCmd) Usage() string       { return "stats" }

func (statsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withApp(ctx, cfg, func(app *bootstrap.App) error {
		n, err := app.Tree.RecomputeAllStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Recomputed stats for %d folder(s)\n", n)
		return nil
	})
}

func init() { RegisterCmd(statsCmd{}) }
