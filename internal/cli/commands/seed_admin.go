package commands

import (
	"PortfolioCMS/internal/cli/bootstrap"
	"PortfolioCMS/internal/config"
	"context"
	"fmt"
)

type seedAdminCmd struct{}

func (seedAdminCmd) Name() string        { return "seed-admin" }
func (seedAdminCmd) Description() string { return "Создать администратора, если его ещё нет" }
func (seedAdminCmd) Usage() string       { return "seed-admin <login> <password>" }

func (seedAdminCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return withApp(ctx, cfg, func(app *bootstrap.App) error {
		admin, created, err := app.Admins.Seed(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(Out, "Admin %q already exists (id %d)\n", admin.Login, admin.ID)
			return nil
		}
		fmt.Fprintf(Out, "Admin %q created (id %d)\n", admin.Login, admin.ID)
		return nil
	})
}

func init() { RegisterCmd(seedAdminCmd{}) }
