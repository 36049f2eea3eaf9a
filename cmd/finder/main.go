package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reedge/reedge-services/api/internal/finder"
	"github.com/reedge/reedge-services/api/internal/logging"
	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/selection"
)

var (
	apiURL     string
	shopSlug   string
	region     string
	search     string
	quiet      time.Duration
	logPath    string
	catalogTTL time.Duration
	plain      bool
)

var rootCmd = &cobra.Command{
	Use:   "finder",
	Short: "Browse resoling shops from the terminal",
	Long: `finder is the terminal storefront of Re:Edge.

It loads the shop catalog from the public API once and filters it locally.
--shop, --region and --q set the starting address the same way the web
page reads its query string.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&apiURL, "api", envOr("REEDGE_API_URL", "http://localhost:8080"), "public API base URL")
	rootCmd.Flags().StringVar(&shopSlug, "shop", "", "initially selected shop slug")
	rootCmd.Flags().StringVar(&region, "region", "", "initial region filter")
	rootCmd.Flags().StringVar(&search, "q", "", "initial search text")
	rootCmd.Flags().DurationVar(&quiet, "debounce", selection.DefaultQuietPeriod, "search quiet period before the address is updated")
	rootCmd.Flags().StringVar(&logPath, "log", "", "write logs to this file (disabled when empty)")
	rootCmd.Flags().DurationVar(&catalogTTL, "catalog-ttl", 5*time.Minute, "how long the fetched catalog is reused")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "show shop details as plain markdown")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, err := logging.NewFile(logPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	initial := url.Values{}
	if shopSlug != "" {
		initial.Set(selection.ParamShop, shopSlug)
	}
	if region != "" {
		initial.Set(selection.ParamRegion, region)
	}
	if search != "" {
		initial.Set(selection.ParamSearch, search)
	}
	// 不正な値を取り除いた形で履歴を始める
	initial = selection.FromQuery(initial).Query()

	client := finder.NewClient(apiURL, nil, logger)
	history := finder.NewHistory(initial)
	changes, listener := finder.ChangeFeed()
	ctrl := selection.NewController(initial, history,
		selection.WithQuietPeriod(quiet),
		selection.WithListener(listener),
	)
	defer ctrl.Close()

	opts := finder.Options{
		Context:    ctx,
		Shops:      application.NewShopQueryService(client, catalogTTL, logger),
		Reviews:    application.NewReviewQueryService(client, nil, logger),
		Controller: ctrl,
		History:    history,
		Changes:    changes,
		Logger:     logger,
	}
	if !plain {
		renderer, err := finder.NewRenderer(76)
		if err != nil {
			logger.Warnw("markdown renderer unavailable, using plain text", "error", err)
		} else {
			opts.Renderer = renderer
		}
	}

	logger.Infow("finder starting", "api", apiURL, "query", initial.Encode())
	p := tea.NewProgram(
		finder.NewModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
