package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/sync"
)

func newPullRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull-request",
		Short: "Inspect and synchronize pull requests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync <owner/name/number>",
		Short: "Synchronize a specific pull request, even if not yet known",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, number, err := splitPullRequestPath(args[0])
			if err != nil {
				exitErr(err)
			}

			orchestrator := sync.NewOrchestrator(rt.store, rt.platform, rt.lock)
			outcome, err := orchestrator.Process(context.Background(), owner, name, number, true)
			if err != nil {
				exitErr(err)
			}
			fmt.Printf("%+v\n", outcome)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <owner/name>",
		Short: "List known pull requests for a specific repository",
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

			var prs []model.PullRequest
			if err := rt.store.DB().Where("repository_id = ?", repo.ID).Order("number").Find(&prs).Error; err != nil {
				exitErr(err)
			}
			if len(prs) == 0 {
				fmt.Println("No pull request found.")
				return
			}
			for _, pr := range prs {
				fmt.Printf("%+v\n", pr)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <owner/name/number>",
		Short: "Show info about a specific pull request",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, cleanup, err := setupRuntime()
			if err != nil {
				exitErr(err)
			}
			defer cleanup()

			owner, name, number, err := splitPullRequestPath(args[0])
			if err != nil {
				exitErr(err)
			}
			repo := ensureRepository(rt.store, owner, name)

			pr, err := rt.store.PullRequest().FindByNumber(repo.ID, uint(number))
			if err != nil {
				exitErr(fmt.Errorf("unknown pull request: %s/%s#%d", owner, name, number))
			}
			fmt.Printf("%+v\n", pr)
			printPullRequestReport(rt, owner, name, number)
		},
	})

	return cmd
}

// splitPullRequestPath parses an "owner/name/number" positional argument,
// the same shape PullRequestPath.from_str accepts in the original CLI.
func splitPullRequestPath(path string) (owner, name string, number int, err error) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("invalid pull request path %q, expected owner/name/number", path)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid pull request number %q", parts[2])
	}
	return parts[0], parts[1], n, nil
}
