package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/internal/model"
)

// newAccountRightCmd builds "account right add/remove/list", nested under
// the account command the way the original nests account_right under
// account via add_typer(account_rights_app, name="right").
func newAccountRightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "right",
		Short: "Manage account rights",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <username> <owner/name>",
		Short: "Add a new account right",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			account := ensureExternalAccount(rt.store, args[0])
			owner, name, err := splitRepositoryPath(args[1])
			if err != nil {
				exitErr(err)
			}
			repo := ensureRepository(rt.store, owner, name)

			right := &model.ExternalAccountRight{Username: account.Username, RepositoryID: repo.ID}
			if err := rt.store.ExternalAccount().GrantRight(right); err != nil {
				exitErr(err)
			}
			fmt.Printf("%+v\n", right)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <username> <owner/name>",
		Short: "Remove a specific account right",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			ensureExternalAccount(rt.store, args[0])
			owner, name, err := splitRepositoryPath(args[1])
			if err != nil {
				exitErr(err)
			}
			repo := ensureRepository(rt.store, owner, name)

			if err := rt.store.ExternalAccount().RevokeRight(args[0], repo.ID); err != nil {
				exitErr(err)
			}
			fmt.Printf("Account %q right on repository %q deleted.\n", args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <username>",
		Short: "List known account rights",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			ensureExternalAccount(rt.store, args[0])

			var rights []model.ExternalAccountRight
			if err := rt.store.DB().Where("username = ?", args[0]).Preload("Repository").Find(&rights).Error; err != nil {
				exitErr(err)
			}
			if len(rights) == 0 {
				fmt.Println("No right found.")
				return
			}
			for _, r := range rights {
				fmt.Printf("- %s\n", r.Repository.Path())
			}
		},
	})

	return cmd
}
