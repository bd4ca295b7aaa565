package main

import (
	"fmt"
	"strings"

	"apply-agent/internal/infrastructure/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the configured sites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		registry, err := config.LoadSites(cfg.SitesFile, cfg.Escalation)
		if err != nil {
			return fmt.Errorf("loading sites: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, name := range registry.Names() {
			site, _ := registry.Get(name)
			sections := make([]string, 0, len(site.Sections))
			for _, s := range site.Sections {
				sections = append(sections, string(s.Name))
			}
			fmt.Fprintf(out, "%-12s %s\n", site.Name, site.URL)
			fmt.Fprintf(out, "%-12s %s\n", "", strings.Join(sections, " > "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
