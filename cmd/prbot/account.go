package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/internal/cryptoutil"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/store"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage external accounts allowed to call /external/set-qa-status",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new-token <username>",
		Short: "Generate a signed, non-expiring JWT for an external account",
		Long: `Generate a signed JWT token for a specific external account.
The token has no expiration date; to revoke access, rotate the account's
RSA keys with "account rotate-keys" instead.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			account := ensureExternalAccount(rt.store, args[0])
			token, err := cryptoutil.CreateAccessToken(account.Username, account.PrivateKey)
			if err != nil {
				exitErr(err)
			}
			fmt.Println(token)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <username>",
		Short: "Add a new external account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			keyPair, err := cryptoutil.GenerateKeyPair()
			if err != nil {
				exitErr(err)
			}
			account := &model.ExternalAccount{
				Username:   args[0],
				PrivateKey: keyPair.PrivateKey,
				PublicKey:  keyPair.PublicKey,
			}
			if err := rt.store.ExternalAccount().Create(account); err != nil {
				exitErr(err)
			}
			fmt.Printf("%+v\n", account)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <username>",
		Short: "Remove an existing external account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			ensureExternalAccount(rt.store, args[0])
			if err := rt.store.ExternalAccount().Delete(args[0]); err != nil {
				exitErr(err)
			}
			fmt.Printf("Account %q deleted.\n", args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all known external accounts",
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			var accounts []model.ExternalAccount
			if err := rt.store.DB().Find(&accounts).Error; err != nil {
				exitErr(err)
			}
			if len(accounts) == 0 {
				fmt.Println("No external account found.")
				return
			}
			fmt.Println("External accounts:")
			for _, a := range accounts {
				fmt.Printf(" - %s\n", a.Username)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rotate-keys <username>",
		Short: "Rotate RSA keys for a specific external account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			account := ensureExternalAccount(rt.store, args[0])
			keyPair, err := cryptoutil.GenerateKeyPair()
			if err != nil {
				exitErr(err)
			}
			account.PrivateKey = keyPair.PrivateKey
			account.PublicKey = keyPair.PublicKey

			if err := rt.store.DB().Save(account).Error; err != nil {
				exitErr(err)
			}
			fmt.Printf("Keys rotated for external account %q.\n", args[0])
		},
	})

	cmd.AddCommand(newAccountRightCmd())

	return cmd
}

func ensureExternalAccount(st store.Store, username string) *model.ExternalAccount {
	account, err := st.ExternalAccount().FindByUsername(username)
	if err != nil {
		exitErr(fmt.Errorf("unknown external account: %s", username))
	}
	return account
}
