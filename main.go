package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"krist-explorer/api"
	"krist-explorer/app"
	"krist-explorer/cache"
	"krist-explorer/models"
	"krist-explorer/tui"
	"krist-explorer/ui"
	"krist-explorer/wallets"
)

func main() {
	fs := pflag.NewFlagSet("krist-explorer", pflag.ContinueOnError)
	models.BindFlags(fs)

	var flags listFlags
	fs.IntVar(&flags.page, "page", 1, "page to show (list)")
	fs.StringVar(&flags.sort, "sort", "", "field to sort by (list)")
	fs.StringVar(&flags.order, "order", "", "ASC or DESC (list)")
	fs.BoolVar(&flags.mined, "mined", false, "include mined transactions (list transactions)")
	fs.BoolVar(&flags.compact, "compact", false, "force the condensed list layout (list)")
	fs.BoolVarP(&flags.yes, "yes", "y", false, "do not ask for confirmation")
	help := fs.BoolP("help", "h", false, "Show help")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "krist-explorer - browse the Krist network from the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Without a command the interactive explorer starts.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [command]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list names [wallets|recent]\n")
		fmt.Fprintf(os.Stderr, "  list transactions [wallets|address <address>|name <name>|sent <name>]\n")
		fmt.Fprintf(os.Stderr, "  list addresses\n")
		fmt.Fprintf(os.Stderr, "  check <name>\n")
		fmt.Fprintf(os.Stderr, "  tx <id>\n")
		fmt.Fprintf(os.Stderr, "  address <address>\n")
		fmt.Fprintf(os.Stderr, "  wallets [list|add <address> [label]|remove <address>|import <address[:label]>...]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if *help {
		fs.Usage()
		return
	}

	cfg, err := models.LoadConfig(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ColorError("Error: "+err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if fs.NArg() == 0 {
		err = runInteractiveMode(ctx, cfg)
	} else {
		err = runCommandLineMode(ctx, cfg, fs.Args(), flags)
	}

	if err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, ui.ColorError(usage.Error()))
			fs.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, ui.ColorError("Error: "+err.Error()))
		os.Exit(1)
	}
}

func runInteractiveMode(ctx context.Context, cfg *models.Config) error {
	ct, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	defer ct.Close()

	return ct.Invoke(func(deps tui.Deps) error {
		return tui.Run(ctx, deps)
	})
}

func runCommandLineMode(ctx context.Context, cfg *models.Config, args []string, flags listFlags) error {
	ct, err := app.New(cfg, app.Options{Stderr: cfg.LogLevel == "debug"})
	if err != nil {
		return err
	}
	defer ct.Close()

	fd := os.Stdout.Fd()
	interactive := term.IsTerminal(fd)
	width := 0
	if interactive {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}

	return ct.Invoke(func(client *api.Client, caches *cache.Caches, w *wallets.Store, log logrus.FieldLogger) error {
		c := &cli{
			ctx:     ctx,
			cfg:     cfg,
			client:  client,
			caches:  caches,
			wallets: w,
			out:     ui.NewPrinter(os.Stdout, interactive),
			prompt:  ui.NewPrompter(os.Stdin, os.Stdout),
			log:     log,
			width:   width,
			flags:   flags,
			now:     time.Now,
		}
		return c.run(args)
	})
}
