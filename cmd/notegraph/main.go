// notegraph expands @graph[...] chart markers in notes into inline SVG.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/notegraph/api"
	"github.com/seenimoa/notegraph/internal/config"
	"github.com/seenimoa/notegraph/internal/graph"
	"github.com/seenimoa/notegraph/internal/logging"
	"github.com/seenimoa/notegraph/internal/plugin"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notegraph",
	Short: "notegraph: inline line charts for plain-text notes",
	Long: `notegraph expands chart markers embedded in note text into inline SVG
line charts.

Marker syntax:
  @graph[1,3,2,5,4]              single series
  @graph[1,2,3:4,3,2]            several series separated by ':'
  @graph[1,2,3:4,3,2];{Title}    with grid flag and title`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return err
		}
		api.Version = version
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "notegraph %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Plugins Command ---

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered text plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := plugin.NewRegistry()
		if err := reg.Register(plugin.NewGraphPlugin(graph.New(cfg.GraphOptions()))); err != nil {
			return err
		}
		for _, info := range reg.List() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s v%-5s %s\n", info.Name, info.Version, info.Description)
		}
		return nil
	},
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		if save {
			path := cfg.FilePath()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}
			log.WithField("file", path).Info("configuration saved")
			return nil
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.Flags().Bool("save", false, "write the effective configuration to the config file")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the live preview server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.API.Port
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")

		srv, err := api.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("server setup failed: %w", err)
		}
		if noUI {
			srv.SetServeUI(false)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, port)
		log.WithField("addr", addr).Info("starting notegraph preview server")
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default: api.port from config)")
	serveCmd.Flags().Bool("no-ui", false, "do not serve the preview page")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  notegraph status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Config file:   %s\n", cfg.FilePath())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Chart:")
		fmt.Fprintf(out, "    Canvas:        %dx%d\n", cfg.Chart.Width, cfg.Chart.Height)
		fmt.Fprintf(out, "    Grid default:  %t\n", cfg.Chart.Grid)
		fmt.Fprintf(out, "    Filled area:   %t\n", cfg.Chart.FilledArea)
		fmt.Fprintf(out, "    Palette:       %v\n", cfg.Chart.Palette)
		fmt.Fprintf(out, "    Render workers: %d\n", cfg.Render.Workers)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Settings:")
		for _, k := range config.CheckKeys(cfg) {
			fmt.Fprintf(out, "    %-24s %-10s (%s, %s)\n", k.Key+":", k.Value, k.Source, k.EnvVar)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
