/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	minStepsPerSecond = 1
	maxStepsPerSecond = 120
)

type Config struct {
	bind           string
	lobbyTimeout   time.Duration
	playerTimeout  time.Duration
	port           int
	prefix         string
	profile        bool
	sendBuffer     int
	stepsPerSecond int
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.stepsPerSecond < minStepsPerSecond || c.stepsPerSecond > maxStepsPerSecond {
		return fmt.Errorf("invalid steps per second (must be between %d-%d inclusive): %d",
			minStepsPerSecond, maxStepsPerSecond, c.stepsPerSecond)
	}
	if c.sendBuffer < 1 {
		return fmt.Errorf("invalid send buffer (must be at least 1): %d", c.sendBuffer)
	}
	if c.playerTimeout < 0 {
		return fmt.Errorf("invalid player timeout (must not be negative): %s", c.playerTimeout)
	}
	if c.lobbyTimeout < 0 {
		return fmt.Errorf("invalid lobby timeout (must not be negative): %s", c.lobbyTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// tickInterval is the fixed period between scheduler fires.
func (c *Config) tickInterval() time.Duration {
	return time.Second / time.Duration(c.stepsPerSecond)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LOBBYBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "lobbybox",
		Short:         "A real-time lobby and session orchestrator for small multiplayer games.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LOBBYBOX_BIND)")
	fs.DurationVar(&cfg.lobbyTimeout, "lobby-timeout", 60*time.Minute, "time before idle lobbies are destroyed, 0 to disable (env: LOBBYBOX_LOBBY_TIMEOUT)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 10*time.Minute, "time before silent connections are dropped, 0 to disable (env: LOBBYBOX_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LOBBYBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LOBBYBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LOBBYBOX_PROFILE)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 32, "outbound messages queued per connection before it is dropped (env: LOBBYBOX_SEND_BUFFER)")
	fs.IntVar(&cfg.stepsPerSecond, "steps-per-second", 10, "game steps per second for started lobbies (env: LOBBYBOX_STEPS_PER_SECOND)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LOBBYBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LOBBYBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LOBBYBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LOBBYBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("lobbybox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
