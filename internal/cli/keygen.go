// internal/cli/keygen.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chorus-cli/chorus/internal/securestore"
)

// keygenCmd represents the 'keygen' command, which prints a fresh master key
// for the encrypted preference store.
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a master key for the preference store",
	Long:  `The 'keygen' command generates a random master key. Export it as ` + masterKeyEnv + ` before starting a session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := securestore.GenerateMasterKey()
		if err != nil {
			return err
		}
		fmt.Printf("%s=%s\n", masterKeyEnv, key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
