package commands

import (
	"PortfolioCMS/internal/cli/bootstrap"
	"PortfolioCMS/internal/config"
	"context"
	"errors"
	"fmt"
)

// ErrIssuesFound возвращается fsck, если найдены нарушения.
var ErrIssuesFound = errors.New("folder hierarchy has issues")

type fsckCmd struct{}

func (fsckCmd) Name() string        { return "fsck" }
func (fsckCmd) Description() string { return "Проверить целостность дерева папок" }
func (fsckCmd) Usage() string       { return "fsck" }

func (fsckCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withApp(ctx, cfg, func(app *bootstrap.App) error {
		issues, err := app.Tree.CheckIntegrity(ctx)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Fprintln(Out, "OK: no issues found")
			return nil
		}
		for _, is := range issues {
			fmt.Fprintf(Out, "%-16s %s  %s\n", is.Kind, is.FolderID, is.Detail)
		}
		return fmt.Errorf("%d issue(s): %w", len(issues), ErrIssuesFound)
	})
}

func init() { RegisterCmd(fsckCmd{}) }
