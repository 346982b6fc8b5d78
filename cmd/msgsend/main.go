package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/alyoongchat/msgsend/internal/cliconfig"
	"github.com/alyoongchat/msgsend/internal/outbox"
	"github.com/alyoongchat/msgsend/pkg/endpoint"
	"github.com/alyoongchat/msgsend/pkg/headers"
	"github.com/alyoongchat/msgsend/pkg/log"
)

const longHelp = `Post messages to a push gateway's "send" endpoint.

Headers and body are sent exactly as given; the raw response is printed.
Configure via $HOME/.msgsend/config.toml, MSGSEND_* environment variables,
or flags (flags win over environment, environment over file).

watch sends each *.json, *.txt or *.msg file dropped into the outbox. Write
messages under a dot-prefixed name and rename them into place; a file still
being written when its events go quiet may be sent in part.`

var exampleUsage = strings.TrimSpace(`
  msgsend send --server-key $KEY --body-file message.json
  msgsend send --base-url http://localhost:8080/ -H "X-Trace: 1" --body '{"to":"t"}'
  msgsend watch --outbox-dir /var/spool/msgsend --workers 4 --rate 10
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type cli struct {
	cfg        cliconfig.Config
	cfgPath    string
	headerArgs []string
	logger     zerolog.Logger
}

func main() {
	c := newCLI()
	if err := c.rootCommand().Execute(); err != nil {
		c.logger.Error().Err(err).Msg("msgsend")
		os.Exit(1)
	}
}

func newCLI() *cli {
	c := &cli{cfg: cliconfig.DefaultConfig()}
	c.logger, _ = cliconfig.Logger(c.cfg.LogLevel)
	return c
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "msgsend",
		Short:         "Post messages to a push gateway's send endpoint",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.msgsend/config.toml)")
	pf.StringVar(&c.cfg.BaseURL, "base-url", c.cfg.BaseURL, "base URL the send path is resolved against")
	pf.StringVar(&c.cfg.ServerKey, "server-key", c.cfg.ServerKey, "legacy server key; adds Authorization and JSON Content-Type headers")
	pf.StringArrayVarP(&c.headerArgs, "header", "H", nil, `request header "Name: value" (repeatable)`)
	pf.DurationVar(&c.cfg.Timeout, "timeout", c.cfg.Timeout, "HTTP timeout per request")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(c.sendCommand(), c.watchCommand())
	return root
}

// load applies file and environment configuration under the flags that were set.
func (c *cli) load(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	flagHeaders, err := headers.Parse(c.headerArgs)
	if err != nil {
		return err
	}
	var base map[string]string
	if c.cfg.ServerKey != "" {
		base = headers.RemoteMessage(c.cfg.ServerKey)
	}
	c.cfg.Headers = headers.Merge(base, c.cfg.Headers, flagHeaders)

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logger, err := cliconfig.Logger(c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger

	logCfg := c.cfg
	if logCfg.ServerKey != "" {
		logCfg.ServerKey = "*****"
	}
	logCfg.Headers = headers.Redact(c.cfg.Headers)
	c.logger.Debug().Interface("config", logCfg).Msg("configuration")
	return nil
}

func (c *cli) endpoint() (*endpoint.Endpoint, error) {
	return endpoint.New(c.cfg.BaseURL,
		endpoint.WithTimeout(c.cfg.Timeout),
		endpoint.WithLogger(log.NewZerologAdapterWithLogger(c.logger)),
	)
}

func (c *cli) sendCommand() *cobra.Command {
	var body, bodyFile string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message and print the raw response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			if cmd.Flags().Changed("body") && bodyFile != "" {
				return errors.New("--body and --body-file are mutually exclusive")
			}
			if bodyFile != "" {
				data, err := readBody(bodyFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				body = data
			}

			ep, err := c.endpoint()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			resp, err := ep.SendMessage(ctx, c.cfg.Headers, body).Result()
			if resp != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "raw message body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", `read the body from a file ("-" for stdin)`)
	return cmd
}

func readBody(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read body file: %w", err)
	}
	return string(data), nil
}

func (c *cli) watchCommand() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Send every message file dropped into an outbox directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			if err := c.cfg.ValidateOutbox(); err != nil {
				return err
			}

			ep, err := c.endpoint()
			if err != nil {
				return err
			}

			d, err := outbox.New(outbox.Config{
				Dir:            c.cfg.OutboxDir,
				Headers:        c.cfg.Headers,
				Workers:        c.cfg.Workers,
				Rate:           c.cfg.Rate,
				MaxAttempts:    c.cfg.MaxAttempts,
				BackoffInitial: c.cfg.BackoffInitial,
				BackoffMax:     c.cfg.BackoffMax,
				Debounce:       c.cfg.Debounce,
			}, ep, log.NewZerologAdapterWithLogger(c.logger))
			if err != nil {
				return fmt.Errorf("create outbox: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				err = d.Drain(ctx)
			} else {
				err = d.Run(ctx)
			}
			st := d.Status()
			c.logger.Info().Int64("sent", st.Sent).Int64("failed", st.Failed).Msg("outbox stopped")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.cfg.OutboxDir, "outbox-dir", c.cfg.OutboxDir, "directory to watch for message files")
	f.IntVar(&c.cfg.Workers, "workers", c.cfg.Workers, "concurrent sends")
	f.Float64Var(&c.cfg.Rate, "rate", c.cfg.Rate, "maximum sends per second (0 = unlimited)")
	f.IntVar(&c.cfg.MaxAttempts, "max-attempts", c.cfg.MaxAttempts, "attempts per message before it moves to failed/")
	f.DurationVar(&c.cfg.BackoffInitial, "backoff-initial", c.cfg.BackoffInitial, "first retry delay")
	f.DurationVar(&c.cfg.BackoffMax, "backoff-max", c.cfg.BackoffMax, "maximum retry delay")
	f.DurationVar(&c.cfg.Debounce, "debounce", c.cfg.Debounce, "quiet period after a file changes before sending it")
	f.BoolVar(&once, "once", false, "send files already present and exit")
	return cmd
}
