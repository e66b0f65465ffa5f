package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/linker"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [skill]...",
	Short: "Remove skill symlinks owned by this repository",
	Long: `Remove skill symlinks from the target directory. Only links pointing back
at this repository are removed; anything else at the target path is left
untouched.

Examples:
  skillctl uninstall alpha          # Uninstall a single skill
  skillctl uninstall alpha beta     # Uninstall several skills
  skillctl uninstall --all          # Uninstall every skill this repo owns`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return runUninstall(cmd.Context(), args, all)
	},
}

func init() {
	uninstallCmd.Flags().BoolP("all", "a", false, "Uninstall every skill this repository owns")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(ctx context.Context, names []string, all bool) error {
	discovery, err := newDiscovery()
	if err != nil {
		return err
	}

	list, err := discovery.ListSkills()
	if err != nil {
		return err
	}

	lnk, err := newLinker()
	if err != nil {
		return err
	}

	var res linker.Result
	if all {
		res, err = lnk.UninstallAll(ctx, list, reportEvent)
	} else {
		res, err = lnk.UninstallNamed(ctx, list, names, reportEvent)
	}
	if err != nil {
		return err
	}

	presenter.Info(res.Summary())
	if res.Failed() {
		return errors.Errorf("%d skill(s) could not be removed", res.Errors)
	}
	return nil
}
