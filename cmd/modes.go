package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the configured color modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		modes, err := cfg.ModeSet()
		if err != nil {
			return err
		}
		for _, m := range modes.All() {
			marker := " "
			if m.Value == cfg.DefaultMode {
				marker = "*"
			}
			fmt.Printf("%s %-10s %-10s %s\n", marker, m.Value, m.Name, m.Icon)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
