package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every skill and its installation status",
	Long:  `Show every skill in the source repository with its installation status and target path. Performs no mutation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList() error {
	discovery, err := newDiscovery()
	if err != nil {
		return err
	}

	list, err := discovery.ListSkills()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		presenter.Info(fmt.Sprintf("No skills found in %s", discovery.SourceDir()))
		return nil
	}

	lnk, err := newLinker()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t------\t-----------")

	for _, skill := range list {
		description := skill.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, lnk.Resolve(skill), description)
	}
	tw.Flush()

	return nil
}
