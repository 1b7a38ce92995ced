package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/cli/config"
	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/infra/buildinfo"
	"github.com/yndnr/zpipe/internal/transport"
)

// SocketFactory creates transport sockets. transport.New is the default.
type SocketFactory func(ctx context.Context, backend string, role transport.Role) (transport.Socket, error)

const socketFactoryKey = "socketFactory"

// AppOption customizes the application.
type AppOption func(*cli.App)

// WithSocketFactory replaces the transport used by pub and sub mode.
func WithSocketFactory(f SocketFactory) AppOption {
	return func(app *cli.App) {
		app.Metadata[socketFactoryKey] = f
	}
}

// App creates the CLI application.
func App(opts ...AppOption) *cli.App {
	app := &cli.App{
		Name:      "zpipe",
		Usage:     "publish and subscribe to ZeroMQ topics from the command line",
		UsageText: "zpipe --mode pub|sub --endpoint ENDPOINT [options]\nzpipe inspect FILE\nzpipe convert SRC DST",
		Version:   buildinfo.Get().Version,
		Flags:     rootFlags(),
		Action:    rootAction,
		Commands: []*cli.Command{
			InspectCommand(),
			ConvertCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{
			socketFactoryKey: SocketFactory(transport.New),
		},
	}

	for _, opt := range opts {
		opt(app)
	}
	return app
}

// rootFlags returns the flags of the pub/sub root command.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "socket role: pub or sub",
		},
		&cli.BoolFlag{
			Name:    "bind",
			Aliases: []string{"b"},
			Usage:   "bind to the endpoint instead of connecting",
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Aliases: []string{"e"},
			Usage:   "transport endpoint, e.g. tcp://127.0.0.1:5555",
		},
		&cli.StringFlag{
			Name:    "topic",
			Aliases: []string{"t"},
			Usage:   "topic to publish or subscribe to (pub prompts when unset, sub receives all)",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "pub: log to replay before stdin; sub: output file",
		},
		&cli.IntFlag{
			Name:  "buf",
			Usage: "socket send (pub) or receive (sub) buffer size in bytes",
		},
		&cli.IntFlag{
			Name:  "hwm",
			Usage: "high-water-mark; also the replay pause interval in messages",
		},
		&cli.StringFlag{
			Name:  "transport",
			Usage: "transport backend: libzmq or zmtp (default: libzmq if available)",
		},
		&cli.DurationFlag{
			Name:  "settle",
			Usage: "delay after bind/connect before publishing",
			Value: config.DefaultSettle,
		},
		&cli.DurationFlag{
			Name:  "cooldown",
			Usage: "pause after every hwm replayed messages",
			Value: config.DefaultCooldown,
		},
		&cli.DurationFlag{
			Name:  "flush-interval",
			Usage: "how often the sub output file is flushed",
			Value: config.DefaultFlushInterval,
		},
		&cli.Float64Flag{
			Name:  "rate",
			Usage: "limit replay to N messages per second (0: unlimited)",
		},
		&cli.StringFlag{
			Name:  "on-truncated",
			Usage: "truncated record handling: skip or fail",
			Value: config.DefaultOnTruncated,
		},
		&cli.StringFlag{
			Name:  "record",
			Usage: "sub: also capture received payloads to a binary record-log",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "sub: overwrite an existing output file without asking",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "pub: show replay progress on stderr",
		},
		&cli.StringFlag{
			Name:  "history",
			Usage: "pub: file to keep interactive message history in",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve Prometheus metrics on this address, e.g. :9102",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
			Value: config.DefaultLogLevel,
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format: text or json",
			Value: config.DefaultLogFormat,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file (default: ~/.zpipe/config.yaml if present)",
		},
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"mode":           "mode",
	"bind":           "bind",
	"endpoint":       "endpoint",
	"topic":          "topic",
	"file":           "file",
	"buf":            "buf",
	"hwm":            "hwm",
	"transport":      "transport",
	"settle":         "settle",
	"cooldown":       "cooldown",
	"flush-interval": "flush_interval",
	"rate":           "rate",
	"on-truncated":   "on_truncated",
	"record":         "record",
	"force":          "force",
	"progress":       "progress",
	"history":        "history",
	"metrics-addr":   "metrics_addr",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// flagsMap returns the explicitly set flags as config keys, so flag
// defaults never mask file or environment values.
func flagsMap(c *cli.Context) map[string]any {
	m := make(map[string]any)
	for name, key := range flagKeys {
		if !c.IsSet(name) {
			continue
		}
		switch name {
		case "bind", "force", "progress":
			m[key] = c.Bool(name)
		case "buf", "hwm":
			m[key] = c.Int(name)
		case "rate":
			m[key] = c.Float64(name)
		case "settle", "cooldown", "flush-interval":
			m[key] = c.Duration(name).String()
		default:
			m[key] = c.String(name)
		}
	}
	return m
}

// loadConfig builds and validates the run configuration.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	cfg, err := config.Load(c.String("config"), flagsMap(c))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func rootAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", c.Args().First())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	s, err := newSession(c, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	if cfg.Mode == config.ModeSub {
		proceed, err := s.confirmOutput()
		if err != nil || !proceed {
			return err
		}
	}
	if err := s.start(c.String("config")); err != nil {
		return err
	}

	switch cfg.Mode {
	case config.ModePub:
		return runPublisher(s)
	default:
		return runSubscriber(s)
	}
}

func socketFactory(c *cli.Context) SocketFactory {
	if f, ok := c.App.Metadata[socketFactoryKey].(SocketFactory); ok && f != nil {
		return f
	}
	return transport.New
}

// configErrorPrefix marks errors raised before anything was started.
const configErrorPrefix = "ZP-CONF-"

// ReportError writes the fatal diagnostic for err to w and returns the
// process exit status. Configuration errors also point at --help.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "error: %v\n", err)
	if strings.HasPrefix(domain.GetErrorCode(err), configErrorPrefix) {
		fmt.Fprintln(w, "run 'zpipe --help' for usage")
	}
	return 1
}
