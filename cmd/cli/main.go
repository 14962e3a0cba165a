package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurosawa0120/wecom-dump/internal/config"
	"github.com/kurosawa0120/wecom-dump/internal/dispatch"
	"github.com/kurosawa0120/wecom-dump/internal/dump"
	"github.com/kurosawa0120/wecom-dump/internal/wecom"
)

var (
	output        string
	corpID        string
	corpSecret    string
	accessToken   string
	userAgent     string
	proxy         string
	proxyUser     string
	proxyPassword string
	overwrite     bool
	recursive     bool
	agentDetails  bool
	delayMS       uint64
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "wecom-dump",
	Short: "Dump a WeCom corporate directory to local JSON files",
	Long: `A CLI tool that authenticates against the WeCom directory API,
enumerates agents, departments and tags, and saves every list and every
per-item member fetch as pretty-printed JSON on local disk.

The three collection jobs run concurrently; per-item fetches are launched
with a fixed delay between them and individual failures never abort the
rest of the run.`,
	SilenceUsage: true,
	RunE:         runDump,
}

func init() {
	rootCmd.Flags().StringVarP(&output, "output", "O", "output", "output directory")
	rootCmd.Flags().StringVarP(&corpID, "corp-id", "i", "", "corporation ID (env WX_CORP_ID)")
	rootCmd.Flags().StringVarP(&corpSecret, "corp-secret", "s", "", "corporation secret (env WX_CORP_SECRET)")
	rootCmd.Flags().StringVar(&accessToken, "token", "", "pre-issued access token (env WX_ACCESS_TOKEN)")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "custom user agent")
	rootCmd.Flags().StringVarP(&proxy, "proxy", "p", "", "proxy URL (http, https, socks5)")
	rootCmd.Flags().StringVar(&proxyUser, "proxy-user", "", "proxy username")
	rootCmd.Flags().StringVar(&proxyPassword, "proxy-password", "", "proxy password")
	rootCmd.Flags().BoolVarP(&overwrite, "overwrite", "y", false, "delete the output path if it already exists")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "fetch department members recursively")
	rootCmd.Flags().BoolVar(&agentDetails, "agent-details", false, "fetch the detail record of every agent")
	rootCmd.Flags().Uint64VarP(&delayMS, "delay", "d", 200, "delay between batch requests, in ms")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run_id", uuid.New().String())
}

func runDump(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override environment values.
	if corpID != "" {
		cfg.CorpID = corpID
	}
	if corpSecret != "" {
		cfg.CorpSecret = corpSecret
	}
	if accessToken != "" {
		cfg.AccessToken = accessToken
	}
	if proxy != "" {
		cfg.Proxy = proxy
	}
	if proxyUser != "" {
		cfg.ProxyUser = proxyUser
	}
	if proxyPassword != "" {
		cfg.ProxyPassword = proxyPassword
	}
	if userAgent != "" {
		cfg.UserAgent = userAgent
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	sink, err := dump.Prepare(output, overwrite)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	client, err := wecom.NewClient(wecom.Options{
		BaseURL:       cfg.BaseURL,
		Proxy:         cfg.Proxy,
		ProxyUser:     cfg.ProxyUser,
		ProxyPassword: cfg.ProxyPassword,
		UserAgent:     cfg.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	ctx := context.Background()

	if cfg.AccessToken != "" {
		// A raw token is installed without validation; a bad one surfaces
		// on the first directory call.
		client.SetToken(cfg.AccessToken)
		logger.Info("using pre-issued access token")
	} else {
		if _, err := client.Authenticate(ctx, cfg.CorpID, cfg.CorpSecret); err != nil {
			return fmt.Errorf("failed to authenticate with provided id and secret: %w", err)
		}
		logger.Info("token acquired")
	}

	dispatcher := dispatch.New(client, sink, logger, dispatch.Options{
		Delay:        time.Duration(delayMS) * time.Millisecond,
		Recursive:    recursive,
		AgentDetails: agentDetails,
	})

	summary := dispatcher.Run(ctx)
	printSummary(summary)

	// Job and sub-task failures are logged and surfaced in the summary;
	// only configuration, client construction and authentication failures
	// affect the exit code.
	return nil
}

func printSummary(summary dispatch.Summary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Job", "Items", "Written", "Failed", "Empty", "Status"})
	for _, report := range summary.Reports() {
		status := "ok"
		if report.Err != nil {
			status = report.Err.Error()
		}
		table.Append([]string{
			report.Name,
			strconv.Itoa(report.Items),
			strconv.Itoa(report.Written),
			strconv.Itoa(report.Failed),
			strconv.Itoa(report.Empty),
			status,
		})
	}
	table.Render()
}
