package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docskin/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize docskin configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure docskin for your built site and generates a .docskin.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.RunWizard(cfgFile); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
