package cli

import (
	"github.com/papercheck/papercheck/internal/server/mcp"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run papercheck as an MCP server over stdio",
	Long: `Serve speaks the Model Context Protocol on stdin/stdout so editors and
agents can run checks as tools.

Exposed tools:
  verify_paper         check a paper and verify its bibliography
  verify_bibliography  verify a bibliography on its own
  health_check         report configuration and cache health

Example MCP client configuration:
  {
    "mcpServers": {
      "papercheck": {
        "command": "papercheck",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return mcp.NewServer(cfg, Version).Start()
}
