package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/cli/output"
	"github.com/yndnr/zpipe/internal/infra/buildinfo"
	"github.com/yndnr/zpipe/internal/transport"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version and available transports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: table, json, yaml",
				Value:   string(output.FormatTable),
			},
		},
		Action: versionAction,
	}
}

// versionInfo is buildinfo.Info plus the compiled-in transports.
type versionInfo struct {
	buildinfo.Info `yaml:",inline"`
	Transports     []string `json:"transports" yaml:"transports"`
}

func (v versionInfo) Table() *output.Table {
	t := output.NewTable("FIELD", "VALUE")
	t.AddRow("version", v.Version)
	t.AddRow("commit", v.Commit)
	t.AddRow("built", v.BuildTime)
	t.AddRow("go", v.GoVersion)
	t.AddRow("platform", v.Platform)
	t.AddRow("transports", fmt.Sprint(v.Transports))
	return t
}

func versionAction(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	info := versionInfo{Info: buildinfo.Get(), Transports: transport.Backends()}
	return output.NewFormatter(format).Format(c.App.Writer, info)
}
