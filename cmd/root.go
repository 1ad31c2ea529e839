package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"corpora/src/log"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Per-tenant knowledge base with retrieval-augmented generation",
	Long: `corpora maintains an isolated document corpus per tenant, builds a
semantic index over it, and answers questions grounded in the retrieved
passages through a streaming LLM provider.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("log.mode") == "production" {
			return log.UseProduction()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
