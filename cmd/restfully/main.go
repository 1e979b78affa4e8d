package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fivetwenty-io/restfully/cmd/restfully/commands"
	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "restfully",
	Short: "Hypermedia REST API explorer",
	Long: `A command-line interface for exploring hypermedia REST APIs.

Resources are fetched from the API entry point and navigated through the links
found in their representations, whatever their media type (JSON, XML, YAML,
form-encoded or vendor specific).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.restfully/config.yml)")
	flags.StringP("uri", "u", "", "API entry point")
	flags.String("username", "", "username for HTTP basic authentication")
	flags.String("password", "", "password for HTTP basic authentication")
	flags.Bool("ask-password", false, "prompt for the password")
	flags.StringSlice("media-type", nil, "extra built-in media types to register (xml, yaml, grid5000, ...)")
	flags.Int("retries", constants.DefaultRetryOnError, "retries after a connection error or a 502, 503 or 504 response")
	flags.Duration("wait", constants.DefaultWaitBeforeRetry, "delay between two attempts")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "timeout of a single attempt")
	flags.Bool("guess", false, "guess item URIs when looking up collection items")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "log every HTTP exchange")
	flags.Bool("no-color", false, "disable colored logs")
	flags.Bool("metrics", false, "print request metrics when the command ends")
	flags.String("nats-url", "", "publish a trace event per HTTP exchange to this NATS server")
	flags.String("nats-subject", "", "NATS subject of trace events")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":       "config",
		"uri":          "uri",
		"username":     "username",
		"password":     "password",
		"ask_password": "ask-password",
		"media_types":  "media-type",
		"retries":      "retries",
		"wait":         "wait",
		"timeout":      "timeout",
		"guess":        "guess",
		"output":       "output",
		"verbose":      "verbose",
		"no_color":     "no-color",
		"metrics":      "metrics",
		"nats_url":     "nats-url",
		"nats_subject": "nats-subject",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewLinksCommand())
	rootCmd.AddCommand(commands.NewItemsCommand())
	rootCmd.AddCommand(commands.NewFindCommand())
	rootCmd.AddCommand(commands.NewSubmitCommand())
	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewTypesCommand())
}

func initConfig() {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	if viper.GetString("config") != "" || os.Getenv(constants.EnvConfigFile) != "" {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	configDir := filepath.Join(home, ".restfully")
	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)

		return
	}

	configFile := filepath.Join(configDir, "config.yml")
	if _, err := os.Stat(configFile); err == nil {
		viper.Set("config", configFile)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
