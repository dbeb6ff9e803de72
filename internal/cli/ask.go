// internal/cli/ask.go
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// askCmd represents the 'ask' command, which runs one input through the
// orchestrator and prints the response.
var askCmd = &cobra.Command{
	Use:   "ask [input]",
	Short: "Ask the model panel a single question",
	Long: `The 'ask' command routes one input through the command cascade: memory
writes, audio paths, sentiment requests, and registry commands are handled
directly; anything else is answered by every active model and synthesized
into a single reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		answer := sess.Handle(context.Background(), strings.Join(args, " "))
		fmt.Println(color.CyanString(answer))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
