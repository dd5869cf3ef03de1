package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/yourusername/naaw/internal/bspwm"
	"github.com/yourusername/naaw/internal/client"
	"github.com/yourusername/naaw/internal/config"
	"github.com/yourusername/naaw/internal/logging"
	"github.com/yourusername/naaw/internal/server"
	"github.com/yourusername/naaw/internal/tagstore"
	"github.com/yourusername/naaw/internal/watcher"
)

var (
	socketPath string
	configPath string
	timeout    time.Duration
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// Color functions
	errorColor = color.New(color.FgRed, color.Bold)
	keyColor   = color.New(color.FgYellow)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "naaw",
	Short: "naaw - tag bspwm windows and toggle them as a group",
	Long: `Naaw is a small helper daemon for bspwm that lets you tag windows by
node id, marks tagged windows with a wider border, and shows or hides
all tagged windows at once.

Run "naaw server <width>" from your bspwmrc and bind "naaw tag" and
"naaw show" to hotkeys. Successful commands print nothing.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// serverCmd runs the daemon
var serverCmd = &cobra.Command{
	Use:   "server <width>",
	Short: "Run the naaw daemon",
	Long: `Runs the daemon that owns the tag set. <width> is the border width in
pixels applied to tagged windows; it overrides border_width from the
config file. The daemon runs until terminated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, err := strconv.Atoi(args[0])
		if err != nil || width < 1 {
			return fmt.Errorf("invalid border width %q: must be a positive integer", args[0])
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg.BorderWidth = width
		if cmd.Flags().Changed("socket") {
			cfg.Socket = socketPath
		}

		store := tagstore.New()
		srv := server.New(cfg, store, bspwm.New(cfg.BspcTimeout()))
		if err := srv.Listen(); err != nil {
			return err
		}

		w := watcher.New(store)
		w.Start()
		defer w.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			logging.Info().Str("signal", sig.String()).Msg("shutting down")
			srv.Close()
		}()

		return srv.Serve()
	},
}

// tagCmd toggles the tag on a node
var tagCmd = &cobra.Command{
	Use:   "tag [node-id]",
	Short: "Toggle the tag on a window",
	Long: `Toggles tag membership for a node. With no argument the currently
focused node is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			focused, err := bspwm.New(0).QueryFocused(cmd.Context())
			if err != nil {
				return fmt.Errorf("cannot resolve focused node: %w", err)
			}
			id = focused
		}

		c := client.NewClient(socketPath, timeout)
		defer c.Close()

		return c.Tag(id)
	},
}

// showCmd toggles group visibility
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Toggle visibility of all tagged windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewClient(socketPath, timeout)
		defer c.Close()

		return c.Show()
	},
}

// statusCmd lists the tagged nodes
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tagged nodes and group visibility",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewClient(socketPath, timeout)
		defer c.Close()

		shown, ids, err := c.Status()
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]interface{}{
				"shown":  shown,
				"tagged": ids,
			})
		}

		keyColor.Print("Visible: ")
		if shown {
			fmt.Println("yes")
		} else {
			fmt.Println("no")
		}

		if len(ids) == 0 {
			fmt.Println("No tagged nodes")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Node")
		for _, id := range ids {
			table.Append(id)
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", client.DefaultSocketPath, "Path to the daemon socket")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", client.DefaultTimeout, "Connection timeout")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging")

	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)

	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
		if debugMode {
			logging.SetDebug(true)
		}
	})
}

func main() {
	if err := logging.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: cannot initialize logging:", err)
	}
	defer logging.Close()

	// Errors are silenced on rootCmd, so every failure path - RunE
	// returns and cobra's own argument validation alike - is printed
	// here, exactly once.
	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

// Helper functions

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}
