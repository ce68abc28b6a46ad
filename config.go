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

	"github.com/Seednode/stonecast/board"
)

type Config struct {
	bind           string
	frameRate      int
	maxViewers     int
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	stoneSize      int
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
	if c.frameRate < 1 || c.frameRate > 120 {
		return fmt.Errorf("invalid frame rate (must be between 1-120 inclusive): %d", c.frameRate)
	}
	if c.maxViewers < 0 {
		return fmt.Errorf("invalid viewer limit (must be 0 or more): %d", c.maxViewers)
	}
	if c.stoneSize < 1 || c.stoneSize > 1000 {
		return fmt.Errorf("invalid stone size (must be between 1-1000 inclusive): %d", c.stoneSize)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// frameInterval is the time between two render ticks of a room.
func (c *Config) frameInterval() time.Duration {
	return time.Second / time.Duration(c.frameRate)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("STONECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "stonecast",
		Short:         "Relays a calibrated Go board overlay from a commentator to stream viewers.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: STONECAST_BIND)")
	fs.IntVar(&cfg.frameRate, "frame-rate", 30, "state frames sent to viewers per second (env: STONECAST_FRAME_RATE)")
	fs.IntVar(&cfg.maxViewers, "max-viewers", 0, "viewer connections allowed per room, 0 for no limit (env: STONECAST_MAX_VIEWERS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: STONECAST_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: STONECAST_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: STONECAST_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle overlay rooms are closed (env: STONECAST_SESSION_TIMEOUT)")
	fs.IntVar(&cfg.stoneSize, "stone-size", board.DefaultStoneSize, "stone size preference, relative to 125 (env: STONECAST_STONE_SIZE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: STONECAST_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: STONECAST_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: STONECAST_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: STONECAST_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("stonecast v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
