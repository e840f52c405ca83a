package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/internal/model"
)

func newMergeRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge-rule",
		Short: "Manage per-branch merge rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <owner/name> <base-branch> <head-branch> <merge|squash|rebase>",
		Short: "Add a new merge rule",
		Long: `Add a new merge rule. Branch arguments accept "*" for wildcard.

Adding the rule '*' -> '*' instead sets the repository's default merge
strategy rather than creating a merge_rule row, matching the original CLI.`,
		Args: cobra.ExactArgs(4),
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

			strategy := model.MergeStrategy(args[3])
			switch strategy {
			case model.MergeStrategyMerge, model.MergeStrategySquash, model.MergeStrategyRebase:
			default:
				exitErr(fmt.Errorf("invalid strategy %q, expected merge, squash, or rebase", args[3]))
			}

			base := model.BranchFromString(args[1])
			head := model.BranchFromString(args[2])

			if base.Type == model.RuleBranchWildcard && head.Type == model.RuleBranchWildcard {
				repo.DefaultStrategy = strategy
				if err := rt.store.Repository().Save(repo); err != nil {
					exitErr(err)
				}
				fmt.Printf("Default strategy set to %q for repository %s/%s.\n", strategy, owner, name)
				return
			}

			rule := &model.MergeRule{
				RepositoryID: repo.ID,
				BaseBranch:   base.String(),
				HeadBranch:   head.String(),
				Strategy:     strategy,
			}
			if err := rt.store.MergeRule().Create(rule); err != nil {
				exitErr(err)
			}
			fmt.Printf("%+v\n", rule)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <owner/name> <base-branch> <head-branch>",
		Short: "Remove a specific merge rule",
		Args:  cobra.ExactArgs(3),
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

			rules, err := rt.store.MergeRule().ListByRepository(repo.ID)
			if err != nil {
				exitErr(err)
			}
			base, head := args[1], args[2]
			for _, r := range rules {
				if r.BaseBranch == base && r.HeadBranch == head {
					if err := rt.store.MergeRule().Delete(r.ID); err != nil {
						exitErr(err)
					}
					fmt.Println("Merge rule deleted.")
					return
				}
			}
			fmt.Println("Merge rule not found.")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <owner/name>",
		Short: "List known merge rules",
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

			fmt.Printf("- (Default) * (head) -> * (base): %s\n", repo.DefaultStrategy)

			rules, err := rt.store.MergeRule().ListByRepository(repo.ID)
			if err != nil {
				exitErr(err)
			}
			for _, r := range rules {
				fmt.Printf("- %s (head) -> %s (base): %s\n", r.Head().String(), r.Base().String(), r.Strategy)
			}
		},
	})

	return cmd
}
