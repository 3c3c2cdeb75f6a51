// Command shop is a terminal client for the storefront API.
//
//	shop [--api URL] [--token T] <command> [args]
//
// Commands: products, product, categories, cart, add, update, remove, clear, token.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
	"github.com/ahinestrog/smartkart/Backend/src/platform/logx"
	"github.com/ahinestrog/smartkart/Frontend/src/shop"
)

const defaultAPI = "http://localhost:8000/api"

type globals struct {
	api      string
	token    string
	user     string
	timeout  time.Duration
	logLevel string
}

type env struct {
	globals
	client *shop.Client
	log    zerolog.Logger
	out    io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"products":   {"products [--search S] [--category C] [--sort S] [--page N]", cmdProducts},
	"product":    {"product <id>", cmdProduct},
	"categories": {"categories", cmdCategories},
	"cart":       {"cart", cmdCart},
	"add":        {"add <productId> [--qty N]", cmdAdd},
	"update":     {"update <productId> <quantity>", cmdUpdate},
	"remove":     {"remove <productId>", cmdRemove},
	"clear":      {"clear", cmdClear},
	"token":      {"token --user U [--admin] [--secret S] [--ttl D]", cmdToken},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globals
	fs := pflag.NewFlagSet("shop", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&g.api, "api", envOr("SHOP_API", defaultAPI), "base URL of the storefront API")
	fs.StringVar(&g.token, "token", os.Getenv("SHOP_TOKEN"), "bearer token for cart commands")
	fs.StringVar(&g.user, "user", envOr("SHOP_USER", "cli"), "user id shown in cart output")
	fs.DurationVar(&g.timeout, "timeout", 15*time.Second, "per-command timeout")
	fs.StringVar(&g.logLevel, "log-level", "warn", "debug|info|warn|error")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return 2
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr, fs)
		return 2
	}

	logger := logx.Setup(logx.Options{Service: "shop-cli", Level: g.logLevel}).
		Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen})
	e := &env{
		globals: g,
		client:  shop.NewClient(g.api, nil),
		log:     logger,
		out:     stdout,
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil {
		if isUsage(err) {
			fmt.Fprintf(stderr, "usage: shop %s\n", cmd.usage)
			return 2
		}
		logger.Debug().Err(err).Str("command", name).Msg("command failed")
		fmt.Fprintf(stderr, "error: %s (%s)\n", fault.Message(err), fault.Code(err))
		return 1
	}
	return 0
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: shop [flags] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, name := range []string{"products", "product", "categories", "cart", "add", "update", "remove", "clear", "token"} {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nflags:")
	fmt.Fprint(w, fs.FlagUsages())
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
