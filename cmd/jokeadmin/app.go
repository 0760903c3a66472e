package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/config"
	"github.com/harveywai/jokeadmin/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	envFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jokeadmin",
		Short: "Administration console for the joke bot",
		Long: strings.TrimSpace(`
Administration console for the joke bot's triggers and jokes.

Settings come from JOKEADMIN_* environment variables, optionally loaded from
an env file, and are overridden by flags.
`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Env file to load before reading the environment")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().Bool("dev", false, "Development mode: console log encoder and gin debug output")

	root.AddCommand(newServeCmd(a), newStubCmd(a), newDevCmd(a))
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	overrideString(flags, "log-level", &cfg.LogLevel)
	overrideString(flags, "api-url", &cfg.APIURL)
	overrideString(flags, "stub-addr", &cfg.StubAddr)
	overrideString(flags, "db", &cfg.StubDB)
	overrideDuration(flags, "api-timeout", &cfg.APITimeout)
	overrideDuration(flags, "session-ttl", &cfg.SessionTTL)
	if flags.Changed("dev") {
		cfg.Dev, _ = flags.GetBool("dev")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		return err
	}
	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func overrideString(flags *pflag.FlagSet, name string, dst *string) {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return
	}
	if v, err := flags.GetString(name); err == nil {
		*dst = v
	}
}

func overrideDuration(flags *pflag.FlagSet, name string, dst *time.Duration) {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return
	}
	if v, err := flags.GetDuration(name); err == nil {
		*dst = v
	}
}

// localURL turns a listen address such as ":8080" into a URL reachable from
// the same host.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, port))
}
