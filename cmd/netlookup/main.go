package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/evyataryagoni/netlookup/internal/app"
	"github.com/evyataryagoni/netlookup/internal/config"
	"github.com/evyataryagoni/netlookup/internal/history"
	"github.com/evyataryagoni/netlookup/internal/inspector"
	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/models"
)

// defaultUserAgent identifies the CLI when USER_AGENT is not set
const defaultUserAgent = "netlookup-cli/1.0"

var (
	logLevel string
	pretty   bool
	port     string
	rawJSON  bool

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "netlookup",
	Short:         "Look up IP addresses, domains and your own public address",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		} else if cfg.LogLevel == "info" {
			// stdout carries the results, keep stderr quiet by default
			cfg.LogLevel = "warn"
		}
		log = logger.New(logger.Config{
			Level:      cfg.LogLevel,
			Pretty:     pretty,
			OutputFile: cfg.LogFile,
			Output:     os.Stderr,
		})
	},
}

var ipCmd = &cobra.Command{
	Use:     "ip [address]",
	Short:   "Look up network information for an IP address",
	Example: "netlookup ip 8.8.8.8",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			details, err := a.IP.Trigger(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), details)
		})
	},
}

var domainCmd = &cobra.Command{
	Use:     "domain [name]",
	Short:   "Look up WHOIS registration data for a domain",
	Example: "netlookup domain example.com",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			details, err := a.Domain.Trigger(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if details.Synthetic {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: WHOIS source unavailable, showing synthetic data")
			}
			return printJSON(cmd.OutOrStdout(), details)
		})
	},
}

var myIPCmd = &cobra.Command{
	Use:   "myip",
	Short: "Show your public address and information about this terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			ua := cfg.UserAgent
			if ua == "" {
				ua = defaultUserAgent
			}
			state := a.MyIP.Activate(cmd.Context(), inspector.FromTerminal(ua))
			if state.Status == models.StatusError {
				return fmt.Errorf("%s", state.Error)
			}
			return printJSON(cmd.OutOrStdout(), state.Data)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:       "history [ip|domain]",
	Short:     "List recent successful lookups, newest first",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.LookupTypeIP), string(models.LookupTypeDomain)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ns, ok := history.NamespaceFor(models.LookupType(args[0]))
		if !ok {
			return fmt.Errorf("history type must be 'ip' or 'domain', got %q", args[0])
		}
		return withApp(func(a *app.App) error {
			items := a.History.ReadAll(cmd.Context(), ns)
			if rawJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return printHistory(cmd.OutOrStdout(), items, time.Now())
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port == "" {
			port = cfg.Port
		}
		return withApp(func(a *app.App) error {
			log.Info().Str("port", port).Msg("Server is running")
			return a.Serve(cmd.Context(), ":"+port)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "human-friendly log output on stderr")

	historyCmd.Flags().BoolVar(&rawJSON, "json", false, "print the raw history items as JSON")
	serveCmd.Flags().StringVar(&port, "port", "", "listen port (defaults to PORT)")

	rootCmd.AddCommand(ipCmd, domainCmd, myIPCmd, historyCmd, serveCmd)
}

// withApp builds the application for one command and closes it afterwards
func withApp(fn func(a *app.App) error) error {
	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printHistory renders items as an aligned table with relative times
func printHistory(w io.Writer, items []models.LookupHistoryItem, now time.Time) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No lookups yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tWHEN\tID")
	for _, it := range items {
		when := humanize.RelTime(time.UnixMilli(it.Timestamp), now, "ago", "from now")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Query, when, it.ID)
	}
	return tw.Flush()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
