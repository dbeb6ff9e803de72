// internal/cli/models.go
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// modelsCmd represents the 'models' command, which lists the registry with
// activation and thinking state.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List registered models and their state",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		for _, entry := range sess.Models() {
			state := red("inactive")
			switch {
			case entry.LoadFailed():
				state = red("load failed")
			case entry.AlwaysActive:
				state = green("always active")
			case entry.Eligible():
				state = green("active")
			}
			thinking := ""
			if entry.ThinkingEnabled {
				thinking = yellow(fmt.Sprintf("  thinking %.0fs", entry.ThinkingDelay))
			}
			fmt.Printf("%-24s %-20s %-14s %s%s\n", entry.Key, entry.DisplayName, entry.Capability, state, thinking)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
