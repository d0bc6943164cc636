package cli

import (
	"context"

	"github.com/soulthread/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Version is reported by the MCP server and --version
var Version = "0.1.0"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:    "memoria",
		Usage:   "Partner read API over users' voice, dream and reflection memories",
		Version: Version,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			exportCommand(),
			seedCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
