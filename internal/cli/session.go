// internal/cli/session.go
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chorus-cli/chorus/internal/tui"
)

// sessionCmd represents the 'session' command, which starts the interactive
// read-eval-print interface.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start an interactive session",
	Long:  `The 'session' command starts an interactive session with the orchestrator. Type "exit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		return tui.Start(context.Background(), sess)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
