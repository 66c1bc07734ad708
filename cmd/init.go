package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guilhermexp/memoria/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize memoria configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure memoria and generates a .memoria.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
