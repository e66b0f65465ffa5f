package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/linker"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var installCmd = &cobra.Command{
	Use:   "install [skill]...",
	Short: "Install skills by symlinking them into the target directory",
	Long: `Install skills by creating symbolic links in the target directory that
point back at the skill directories in this repository.

Examples:
  skillctl install alpha            # Install a single skill
  skillctl install alpha beta       # Install several skills
  skillctl install --all            # Install every discovered skill
  skillctl install alpha --force    # Replace whatever occupies the target`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		force, _ := cmd.Flags().GetBool("force")
		return runInstall(cmd.Context(), args, all, force)
	},
}

func init() {
	installCmd.Flags().BoolP("all", "a", false, "Install every discovered skill")
	rootCmd.AddCommand(installCmd)
}

func runInstall(ctx context.Context, names []string, all, force bool) error {
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
		res, err = lnk.InstallAll(ctx, list, force, reportEvent)
	} else {
		res, err = lnk.InstallNamed(ctx, list, names, force, reportEvent)
	}
	if err != nil {
		return err
	}

	presenter.Info(res.Summary())
	if res.Failed() {
		return errors.Errorf("%d skill(s) could not be installed", res.Errors)
	}
	return nil
}
