package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/client/transport"
	"github.com/yourusername/elalgpt/internal/client/ui"
	"github.com/yourusername/elalgpt/internal/config"
	"github.com/yourusername/elalgpt/internal/logging"
)

var (
	configPath    string
	endpoint      string
	transportKind string
	light         bool
	logFile       string
	verbose       bool
	replyDelay    string
)

var rootCmd = &cobra.Command{
	Use:   "elalgpt",
	Short: "Chat with elalgpt from the terminal",
	Long: `elalgpt is a single-screen chat client. Type a message and press enter;
the bot's reply appears after a short typing animation.

Links in replies are clickable in terminals that support hyperlinks.
Click a bot message or press ctrl+y to copy it.`,
	SilenceUsage: true,
	RunE:         runChat,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var force bool

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSend,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&endpoint, "endpoint", "", "completion endpoint URL")
	flags.StringVar(&transportKind, "transport", "", "transport: http, ws or echo")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().BoolVar(&light, "light", false, "start in light mode")
	rootCmd.Flags().StringVar(&replyDelay, "reply-delay", "", "pause before a reply is shown, e.g. 800ms")

	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(sendCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("endpoint") {
		if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
			cfg.WSEndpoint = endpoint
		} else {
			cfg.Endpoint = endpoint
		}
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport = strings.ToLower(transportKind)
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFile
	}
	if cmd.Flags().Changed("light") && light {
		cfg.Theme = config.ThemeLight
	}
	if cmd.Flags().Changed("reply-delay") {
		cfg.ReplyDelay = replyDelay
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// newTransport builds the transport named in the config. The returned func releases it.
func newTransport(cfg *config.Config, logger *zap.Logger) (transport.Transport, func(), error) {
	timeout, err := cfg.RequestTimeoutDuration()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Transport {
	case config.TransportWebSocket:
		ws := transport.NewWebSocket(cfg.WSEndpoint, logger)
		return ws, func() { _ = ws.Close() }, nil
	case config.TransportEcho:
		return transport.Echo, func() {}, nil
	default:
		client := &http.Client{Timeout: timeout}
		h := transport.NewHTTP(cfg.Endpoint, client, logger)
		logger.Debug("using http transport", zap.String("endpoint", h.Endpoint()), zap.Duration("timeout", timeout))
		return h, func() {}, nil
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewFile(cfg.LogFile, cfg.LogLevel, verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	tr, release, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	delay, err := cfg.ReplyDelayDuration()
	if err != nil {
		return err
	}
	if delay == 0 {
		delay = -1 // show replies as soon as they arrive
	}

	var haptics ui.Haptics = ui.NoHaptics{}
	if cfg.Haptics {
		haptics = ui.Bell{W: os.Stderr}
	}

	logger.Info("starting chat",
		zap.String("transport", cfg.Transport),
		zap.String("theme", cfg.Theme))

	model := ui.NewModel(ui.Options{
		Transport:  tr,
		Greeting:   cfg.Greeting,
		Dark:       cfg.IsDark(),
		Haptics:    haptics,
		Logger:     logger,
		ReplyDelay: delay,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewConsole(cfg.LogLevel, verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	tr, release, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return fmt.Errorf("message is empty")
	}

	fmt.Fprintln(cmd.OutOrStdout(), tr.Send(context.Background(), message))
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no config location; pass --config")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
	return nil
}
