package cli

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/soulthread/memoria/pkg/service/mcp"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, embeddingFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve memory tools to an MCP client over stdio",
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

			embedder, err := cfg.newEmbedder(ctx)
			if err != nil {
				return err
			}

			uc := memories.New(repo, memories.WithEmbedder(embedder))
			logging.From(ctx).Info("mcp server started", "version", Version)
			return mcp.NewServer(uc, Version).Run(ctx, &mcpsdk.StdioTransport{})
		},
	}
}
