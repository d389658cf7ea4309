package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docskin",
	Short: "Theme customization for built Sphinx documentation sites",
	Long: `docskin rewrites the pages of a built Read the Docs themed site: it
adds a unified header with a color-mode toggle, preloads fonts and adjusts
the footer. It can also serve the site with each visitor's color mode
remembered and the toggle kept live over a WebSocket.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".docskin.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
