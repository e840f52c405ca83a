package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/internal/model"
)

func newRepositoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repository",
		Short: "Manage repositories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync <owner/name>",
		Short: "Synchronize a specific repository, creating it if unknown",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, err := splitRepositoryPath(args[0])
			if err != nil {
				exitErr(err)
			}

			repo, err := rt.store.Repository().FindByPath(owner, name)
			if err != nil {
				repo = &model.Repository{Owner: owner, Name: name}
				if err := rt.store.Repository().Create(repo); err != nil {
					exitErr(err)
				}
			}
			fmt.Printf("%+v\n", repo)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all known repositories",
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			var repos []model.Repository
			if err := rt.store.DB().Find(&repos).Error; err != nil {
				exitErr(err)
			}
			if len(repos) == 0 {
				fmt.Println("No repository found.")
				return
			}
			for _, r := range repos {
				fmt.Printf("%+v\n", r)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <owner/name>",
		Short: "Show info about a specific repository",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, err := splitRepositoryPath(args[0])
			if err != nil {
				exitErr(err)
			}
			repo := ensureRepository(rt.store, owner, name)
			fmt.Printf("%+v\n", repo)
		},
	})

	cmd.AddCommand(repositorySetBoolCmd("set-manual-interaction", "Enable/disable the manual interaction mode", func(r *model.Repository, v bool) { r.ManualInteraction = v }))
	cmd.AddCommand(repositorySetBoolCmd("set-default-automerge", "Set the default automerge value", func(r *model.Repository, v bool) { r.DefaultAutomerge = v }))
	cmd.AddCommand(repositorySetBoolCmd("set-default-qa", "Enable/skip the QA status requirement by default", func(r *model.Repository, v bool) { r.DefaultEnableQa = v }))
	cmd.AddCommand(repositorySetBoolCmd("set-default-checks", "Enable/skip the checks status requirement by default", func(r *model.Repository, v bool) { r.DefaultEnableChecks = v }))

	cmd.AddCommand(&cobra.Command{
		Use:   "set-title-regex <owner/name> <regex>",
		Short: "Set the pull request title validation regex",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, err := splitRepositoryPath(args[0])
			if err != nil {
				exitErr(err)
			}
			if _, err := regexp.Compile(args[1]); err != nil {
				exitErr(fmt.Errorf("invalid regex: %w", err))
			}

			repo := ensureRepository(rt.store, owner, name)
			repo.PRTitleValidationRegex = args[1]
			if err := rt.store.Repository().Save(repo); err != nil {
				exitErr(err)
			}
			fmt.Printf("Title validation regex set to %q for repository %s/%s.\n", args[1], owner, name)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-default-strategy <owner/name> <merge|squash|rebase>",
		Short: "Set the default merge strategy",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, err := splitRepositoryPath(args[0])
			if err != nil {
				exitErr(err)
			}
			strategy := model.MergeStrategy(args[1])
			switch strategy {
			case model.MergeStrategyMerge, model.MergeStrategySquash, model.MergeStrategyRebase:
			default:
				exitErr(fmt.Errorf("invalid strategy %q, expected merge, squash, or rebase", args[1]))
			}

			repo := ensureRepository(rt.store, owner, name)
			repo.DefaultStrategy = strategy
			if err := rt.store.Repository().Save(repo); err != nil {
				exitErr(err)
			}
			fmt.Printf("Default strategy set to %q for repository %s/%s.\n", strategy, owner, name)
		},
	})

	cmd.AddCommand(newRepositoryRuleCmd())

	return cmd
}

// repositorySetBoolCmd builds the small family of "repository set-default-*
// <owner/name> <true|false>" subcommands, all sharing the same
// load/mutate/save/print shape.
func repositorySetBoolCmd(use, short string, apply func(*model.Repository, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <owner/name> <true|false>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, err := splitRepositoryPath(args[0])
			if err != nil {
				exitErr(err)
			}
			value, err := parseBoolArg(args[1])
			if err != nil {
				exitErr(err)
			}

			repo := ensureRepository(rt.store, owner, name)
			apply(repo, value)
			if err := rt.store.Repository().Save(repo); err != nil {
				exitErr(err)
			}
			fmt.Printf("%s set to %q for repository %s/%s.\n", use, args[1], owner, name)
		},
	}
}

func parseBoolArg(s string) (bool, error) {
	switch s {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", s)
	}
}

