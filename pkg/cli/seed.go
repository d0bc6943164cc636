package cli

import (
	"context"
	"fmt"

	"github.com/soulthread/memoria/pkg/auth"
	"github.com/soulthread/memoria/pkg/usecase/seed"
	"github.com/urfave/cli/v3"
)

func seedCommand() *cli.Command {
	var (
		cfg          config
		userID       string
		partnersFile string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User who receives the demo memories",
			Value:       "demo-user",
			Sources:     cli.EnvVars("MEMORIA_SEED_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "partners-file",
			Usage:       "YAML file of partners to write into the partnerAuth collection",
			Sources:     cli.EnvVars("MEMORIA_PARTNERS_FILE"),
			Destination: &partnersFile,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Write demo memories and partners into Firestore",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setupLogger(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			seeder := seed.New(repo)
			result, err := seeder.Memories(ctx, userID)
			if err != nil {
				return err
			}

			var partners int
			if partnersFile != "" {
				registry, err := auth.LoadFile(partnersFile)
				if err != nil {
					return err
				}
				if partners, err = seeder.Partners(ctx, registry.Partners()); err != nil {
					return err
				}
			}

			fmt.Fprintf(c.Root().Writer, "seeded %s: %d voice events, %d dream events, %d reflections, %d partners\n",
				userID, result.VoiceEvents, result.DreamEvents, result.Reflections, partners)
			return nil
		},
	}
}
