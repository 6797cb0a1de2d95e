package main

import (
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aderemi/folionav/internal/site/page"
	"github.com/aderemi/folionav/pkg/logging"
)

var sectionsJSON bool

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the sections of the site file in navigation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		site, _, err := loadSite(cfg, logging.NopLogger{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		infos := page.Sections(site)

		if sectionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tPLACEMENT\tHOME")
		home := site.Registry().Home()
		for _, s := range infos {
			mark := ""
			if s.ID == home {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Label, s.Placement, mark)
		}
		return w.Flush()
	},
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(sectionsCmd)
}
