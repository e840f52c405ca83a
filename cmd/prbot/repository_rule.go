package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/internal/model"
)

// newRepositoryRuleCmd builds "repository rule add/delete/list", nested
// under the repository command the way the original nests repository_rules
// under repository via add_typer(rules_app, name="rule").
func newRepositoryRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage repository rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <owner/name> <rule-name> <conditions-json> <actions-json>",
		Short: "Add a new repository rule",
		Long: `Add a new repository rule.

conditions-json and actions-json are JSON arrays of tagged objects, e.g.:
  conditions: [{"type":"author","author":"octocat"}]
  actions:    [{"type":"set_automerge","bool":true}]`,
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

			var conditions model.RuleConditionList
			if err := json.Unmarshal([]byte(args[2]), &conditions); err != nil {
				exitErr(fmt.Errorf("invalid conditions JSON: %w", err))
			}
			var actions model.RuleActionList
			if err := json.Unmarshal([]byte(args[3]), &actions); err != nil {
				exitErr(fmt.Errorf("invalid actions JSON: %w", err))
			}

			rule := &model.RepositoryRule{
				RepositoryID: repo.ID,
				Name:         args[1],
				Conditions:   conditions,
				Actions:      actions,
			}
			if err := rt.store.RepositoryRule().Create(rule); err != nil {
				exitErr(err)
			}
			fmt.Printf("%+v\n", rule)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <owner/name> <rule-name>",
		Short: "Delete a specific repository rule",
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
			repo := ensureRepository(rt.store, owner, name)

			rules, err := rt.store.RepositoryRule().ListByRepository(repo.ID)
			if err != nil {
				exitErr(err)
			}
			for _, r := range rules {
				if r.Name == args[1] {
					if err := rt.store.RepositoryRule().Delete(r.ID); err != nil {
						exitErr(err)
					}
					fmt.Println("Repository rule deleted.")
					return
				}
			}
			fmt.Println("Repository rule not found.")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <owner/name>",
		Short: "List all known repository rules",
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

			rules, err := rt.store.RepositoryRule().ListByRepository(repo.ID)
			if err != nil {
				exitErr(err)
			}
			if len(rules) == 0 {
				fmt.Println("No rule found.")
				return
			}
			for _, r := range rules {
				fmt.Printf("%+v\n", r)
			}
		},
	})

	return cmd
}
