package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

const (
	appName = "Pomobar"
	appID   = "com.pomobar.app"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Settings file path (defaults to settings.yaml in the user config dir)" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run       RunCmd       `cmd:"" default:"1" help:"Start the tray timer"`
	State     StateCmd     `cmd:"" help:"Inspect or clear the saved timer state"`
	Autostart AutostartCmd `cmd:"" help:"Manage launching Pomobar at login"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(globals *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	globals.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(globals.Logger)
	return nil
}

func newParser(cli *CLI, globals *Global, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("pomobar"),
		kong.Description("A Pomodoro timer that lives in the system tray."),
		kong.UsageOnError(),
		kong.Bind(globals),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	globals := &Global{Logger: slog.Default(), Out: os.Stdout}

	parser, err := newParser(&cli, globals)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(globals, &cli); err != nil {
		globals.Logger.Error("Command failed", slog.String("command", ctx.Command()), slog.Any("error", err))
		os.Exit(1)
	}
}
