package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagBaseURL string
	flagRoute   string
)

var rootCmd = &cobra.Command{
	Use:           "pressroom",
	Short:         "Terminal reader for WordPress-style blogs",
	Long:          "pressroom browses the posts, categories and pages of a WordPress-style JSON content API.",
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "content API root (overrides config)")
	rootCmd.Flags().StringVar(&flagRoute, "route", "/", "view to open first, e.g. /post/12 or /category/3")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pressroom %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
