// Package command defines the zpipe command line using urfave/cli/v2.
//
//   - root.go: root command, flags and the pub/sub dispatch
//   - session.go: per-run logger, metrics, config watcher and shutdown
//   - pub.go: publisher mode (file replay, then interactive stdin)
//   - sub.go: subscriber mode (console or file sink, optional capture)
//   - inspect.go, convert.go, version.go: offline subcommands
package command
