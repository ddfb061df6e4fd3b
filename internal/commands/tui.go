package commands

import (
	"errors"
	"os"

	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/kanban"
	"taskboard/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open a project board in the terminal",
	Long: `Open a project board in the terminal. Select a task with the arrow keys,
press space to pick it up, move it with the arrows and press space again to drop it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetString("project")
		if projectID == "" {
			return errors.New("--project is required")
		}
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("TASKBOARD_TOKEN")
		}

		cfg := config.Load()
		if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
			cfg.BackendURL = backend
		}

		var opts []kanban.Option
		if readOnly, _ := cmd.Flags().GetBool("read-only"); readOnly {
			opts = append(opts, kanban.WithReadOnly())
		}
		if restore, _ := cmd.Flags().GetBool("restore-on-cancel"); restore || cfg.RestoreOnCancel {
			opts = append(opts, kanban.WithRestoreOnCancel())
		}

		backend := client.New(cfg.BackendURL, token, cfg.BackendTimeout)
		return tui.RunBoardTUI(kanban.NewBoard(projectID, backend, opts...))
	},
}

func init() {
	tuiCmd.Flags().String("project", "", "Project ID")
	tuiCmd.Flags().String("token", "", "Backend bearer token (default $TASKBOARD_TOKEN)")
	tuiCmd.Flags().String("backend", "", "Backend base URL (overrides BACKEND_URL)")
	tuiCmd.Flags().Bool("read-only", false, "Open the board without drag and drop")
	tuiCmd.Flags().Bool("restore-on-cancel", false, "Undo live changes when a drag is cancelled")
}
