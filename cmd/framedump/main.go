package main

import (
	"fmt"
	"os"

	"github.com/danmuck/safebuf/internal/config"
	"github.com/danmuck/safebuf/internal/logging"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "framedump: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "framedump",
		Usage: "inspect and build length-prefixed TLV frames",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML config path"},
			&cli.StringFlag{Name: "log-level", Usage: "trace|debug|info|warn|error|off"},
		},
		Before: setup,
		Commands: []*cli.Command{
			decodeCommand(),
			encodeCommand(),
			configCommand(),
		},
	}
}

// setup loads the config and applies log level precedence:
// --log-level, then SAFEBUF_LOG_LEVEL, then the config file.
func setup(c *cli.Context) error {
	logging.ConfigureRuntime()

	cfg := config.DefaultDumpConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadDumpConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	switch {
	case c.IsSet("log-level"):
		if !logging.SetLevel(c.String("log-level")) {
			return fmt.Errorf("invalid --log-level %q", c.String("log-level"))
		}
	case os.Getenv(logging.EnvLogLevel) == "":
		logging.SetLevel(cfg.LogLevel)
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func dumpConfig(c *cli.Context) config.DumpConfig {
	if cfg, ok := c.App.Metadata[configKey].(config.DumpConfig); ok {
		return cfg
	}
	return config.DefaultDumpConfig()
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "manage framedump config files",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write a config template",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("config init: expected one path")
					}
					path := c.Args().First()
					if err := config.WriteTemplate(path, c.Bool("force")); err != nil {
						return err
					}
					_, err := fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
					return err
				},
			},
			{
				Name:      "validate",
				Usage:     "load and validate a config file",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("config validate: expected one path")
					}
					if _, err := config.LoadDumpConfig(c.Args().First()); err != nil {
						return err
					}
					_, err := fmt.Fprintf(c.App.Writer, "valid %s\n", c.Args().First())
					return err
				},
			},
		},
	}
}
