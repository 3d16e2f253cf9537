package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"depot-records/backend/config"
	"depot-records/backend/internal/api/handler"
	"depot-records/backend/internal/app"
	"depot-records/backend/internal/model"
	applogger "depot-records/backend/pkg/logger"
)

// 版本信息，构建时通过 ldflags 注入
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

type rootOptions struct {
	configPath string
	actor      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "depotctl",
		Short:         "Depot records: job cards, NCR reports, letters and vendors",
		Long:          "depotctl runs the record lifecycle engine directly against the configured store.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default ./config/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.actor, "actor", defaultActor(), "actor recorded in audit fields")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newCreateCmd(opts))
	cmd.AddCommand(newTransitionCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSweepCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "depotctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "depotctl"
}

// openApp 加载配置并为单条命令装配引擎
func openApp(ctx context.Context, opts *rootOptions) (*app.App, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger)
}

// parseKind 接受实体类型（job_card）或其 URL 片段（job-cards）
func parseKind(s string) (model.EntityType, error) {
	if kind, ok := handler.KindFromSlug(s); ok {
		return kind, nil
	}
	kind := model.EntityType(strings.ReplaceAll(strings.ToLower(s), "-", "_"))
	if kind.Valid() {
		return kind, nil
	}
	return "", fmt.Errorf("unknown record type %q (want one of job_card, ncr_report, letter, vendor)", s)
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
