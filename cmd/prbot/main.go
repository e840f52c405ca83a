// Package main is the entry point for prbot, a GitHub pull-request
// synchronization bot.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prbot/prbot/consts"
	"github.com/prbot/prbot/internal/auth"
	"github.com/prbot/prbot/internal/config"
	"github.com/prbot/prbot/internal/database"
	"github.com/prbot/prbot/internal/gif"
	"github.com/prbot/prbot/internal/importexport"
	"github.com/prbot/prbot/internal/lock"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/server"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/sync"
	"github.com/prbot/prbot/pkg/logger"
)

// Build information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "prbot",
	Short: "prbot - GitHub pull request synchronization bot",
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.BootstrapConfigPath, "configuration file path")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(newRepositoryCmd())
	rootCmd.AddCommand(newPullRequestCmd())
	rootCmd.AddCommand(newMergeRuleCmd())
	rootCmd.AddCommand(newAccountCmd())

	exportCmd.Flags().String("file", "export.json", "output file path")
	importCmd.Flags().String("file", "export.json", "input file path")
	importCmd.Flags().Bool("compatibility", false, "read the legacy integer-ID-keyed export format")

	serveCmd.Flags().String("ip", "", "server bind address (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prbot %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime bundles everything a CLI command needs to touch the database,
// GitHub, the gif search client, and the distributed lock, mirroring the
// original CLI's per-invocation dependency-injection setup.
type runtime struct {
	cfg      *config.Config
	store    store.Store
	platform platform.Client
	lock     lock.Client
	gif      gif.Client
}

func setupRuntime() (*runtime, func(), error) {
	bootstrapCfg, err := config.LoadBootstrap(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := bootstrapCfg.ToConfig()

	if err := logger.Init(cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.InitWithPath(cfg.Database.URL); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	st := store.NewStore(database.Get())

	var upgrader *auth.Upgrader
	switch {
	case cfg.GitHub.UsesApp():
		upgrader = auth.NewApp(cfg.GitHub.AppClientID, cfg.GitHub.AppPrivateKey)
	case cfg.GitHub.UsesPersonalToken():
		upgrader = auth.NewUser(cfg.GitHub.PersonalToken)
	default:
		upgrader = auth.NewAnonymous()
	}
	plat := platform.NewClient(upgrader)

	lockClient, err := lock.NewClient(cfg.Lock.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to lock service: %w", err)
	}

	gifClient := gif.NewClient(cfg.Gif.TenorKey)

	rt := &runtime{cfg: cfg, store: st, platform: plat, lock: lockClient, gif: gifClient}
	cleanup := func() {
		_ = lockClient.Close()
		_ = database.Close()
		_ = logger.Sync()
	}
	return rt, cleanup, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prbot HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		rt, cleanup, err := setupRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer cleanup()

		if ip, _ := cmd.Flags().GetString("ip"); ip != "" {
			rt.cfg.Server.IP = ip
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			rt.cfg.Server.Port = port
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			rt.cfg.Server.Debug = true
		}

		srv := server.New(rt.cfg, rt.store, rt.platform, rt.lock, rt.gif)
		if err := srv.Start(); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}

		var scheduler *sync.ResyncScheduler
		if rt.cfg.Resync.Enabled {
			orchestrator := sync.NewOrchestrator(rt.store, rt.platform, rt.lock)
			scheduler = sync.NewResyncScheduler(orchestrator, rt.store)
			if err := scheduler.Start(rt.cfg.Resync.Schedule); err != nil {
				logger.Fatal("failed to start resync scheduler", zap.Error(err))
			}
		}

		logger.Info("prbot server is running", zap.String("address", rt.cfg.Server.Address()))
		srv.WaitForShutdown()
		if scheduler != nil {
			scheduler.Stop()
		}
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the database and the lock service",
	Run: func(cmd *cobra.Command, args []string) {
		rt, cleanup, err := setupRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer cleanup()

		ok := true
		if err := database.HealthCheck(); err != nil {
			fmt.Printf("database: KO (%v)\n", err)
			ok = false
		} else {
			fmt.Println("database: OK")
		}

		if err := rt.lock.Ping(context.Background()); err != nil {
			fmt.Printf("lock: KO (%v)\n", err)
			ok = false
		} else {
			fmt.Println("lock: OK")
		}

		if !ok {
			os.Exit(1)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all repositories, pull requests, and rules to a JSON file",
	Run: func(cmd *cobra.Command, args []string) {
		rt, cleanup, err := setupRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer cleanup()

		path, _ := cmd.Flags().GetString("file")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		if err := importexport.Export(rt.store, f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Exported data to %s\n", path)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import repositories, pull requests, and rules from a JSON file",
	Run: func(cmd *cobra.Command, args []string) {
		rt, cleanup, err := setupRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer cleanup()

		path, _ := cmd.Flags().GetString("file")
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		compatibility, _ := cmd.Flags().GetBool("compatibility")
		if compatibility {
			err = importexport.ImportCompatibility(rt.store, f)
		} else {
			err = importexport.Import(rt.store, f)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Imported data from %s\n", path)
	},
}

// splitRepositoryPath parses an "owner/name" positional argument, the same
// shape RepositoryPath.from_str accepts in the original CLI.
func splitRepositoryPath(path string) (owner, name string, err error) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository path %q, expected owner/name", path)
	}
	return parts[0], parts[1], nil
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func ensureRepository(st store.Store, owner, name string) *model.Repository {
	repo, err := st.Repository().FindByPath(owner, name)
	if err != nil {
		exitErr(fmt.Errorf("unknown repository: %s/%s", owner, name))
	}
	return repo
}
