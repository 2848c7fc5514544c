package commands

import (
	"PortfolioCMS/internal/cli/bootstrap"
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/service"
	"context"
	"fmt"
	"io"
	"strings"
)

type treeCmd struct{}

func (treeCmd) Name() string        { return "tree" }
func (treeCmd) Description() string { return "Показать дерево папок" }
func (treeCmd) Usage() string       { return "tree" }

func (treeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withApp(ctx, cfg, func(app *bootstrap.App) error {
		roots, err := app.Tree.BuildTree(ctx)
		if err != nil {
			return err
		}
		if len(roots) == 0 {
			fmt.Fprintln(Out, "(no folders)")
			return nil
		}
		printTree(Out, roots, 0)
		return nil
	})
}

// printTree печатает узлы с отступом по глубине. Рекурсия ограничена деревом, которое BuildTree уже проверил на циклы.
func printTree(w io.Writer, nodes []*service.TreeNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.Name, n.MediaCount)
		printTree(w, n.Children, depth+1)
	}
}

func init() { RegisterCmd(treeCmd{}) }
