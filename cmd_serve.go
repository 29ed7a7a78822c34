package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"f1laptrend/pkg/bot"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/pubsub"
	"f1laptrend/pkg/webserver"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddress string
	serveDataDir string
	serveWithBot bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard REST and websocket API",
	Long: `Starts the HTTP server:

  GET /api/circuits                         circuit catalog
  GET /api/circuits/{circuit}/view          derived dashboard as JSON
  GET /api/circuits/{circuit}/chart.png     comparison chart
  GET /api/circuits/{circuit}/trend.png     pole and fastest lap chart
  GET /api/circuits/{circuit}/sparkline.png pole trend sparkline
  GET /ws?circuit=...                       live dashboard over a websocket
  GET /data/...                             static datasets, when --data-dir is set

With --bot the Telegram bot runs in the same process.`,
	RunE: runServe,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ps := pubsub.NewPubSub[dashboard.Snapshot]()
		go dashboard.Monitor(ctx, ps, logger)
		return runBot(ctx, ps)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "directory served under /data/ (overrides config)")
	serveCmd.Flags().BoolVar(&serveWithBot, "bot", false, "also run the Telegram bot")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddress != "" {
		cfg.Web.Address = serveAddress
	}
	if serveDataDir != "" {
		cfg.Web.DataDir = serveDataDir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ps := pubsub.NewPubSub[dashboard.Snapshot]()
	m := webserver.NewManager(newFetcher(), ps, webserver.Options{
		Address:      cfg.Web.Address,
		DataDir:      cfg.Web.DataDir,
		Defaults:     cfg.DefaultInputs(),
		LoadTimeout:  loadTimeout,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}, logger)
	m.Debug()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.Serve(ctx)
	})
	g.Go(func() error {
		dashboard.Monitor(ctx, ps, logger)
		return nil
	})
	if serveWithBot {
		g.Go(func() error {
			return runBot(ctx, ps)
		})
	}
	return g.Wait()
}

func runBot(ctx context.Context, ps *pubsub.PubSub[dashboard.Snapshot]) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is not set (config telegram.token or TELEGRAM_TOKEN)")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	api.Debug = verbose
	logger.Info("authorized on account", zap.String("account", api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	circuitsApp := bot.NewCircuitsApp(api, newFetcher(), ps, cfg.DefaultInputs(), cfg.Telegram.CircuitsPerPage, logger)
	bot.New(api, bot.NewMainApp(api, circuitsApp), logger).Run(ctx, updates)
	return nil
}
