package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/auth"
	"github.com/ahinestrog/smartkart/Frontend/src/shop"
)

var errUsage = errors.New("usage")

func isUsage(err error) bool { return errors.Is(err, errUsage) || errors.Is(err, pflag.ErrHelp) }

func subFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {}
	return fs
}

func cmdProducts(ctx context.Context, e *env, args []string) error {
	var f catalog.Filter
	fs := subFlags("products")
	fs.StringVarP(&f.Search, "search", "s", "", "case-insensitive name search")
	fs.StringVarP(&f.Category, "category", "c", "", "category, or all")
	fs.StringVar(&f.Sort, "sort", "", "featured|price-asc|price-desc|rating|newest")
	fs.IntVarP(&f.Page, "page", "p", 1, "1-based page")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	page, err := e.client.Products(ctx, f)
	if err != nil {
		return err
	}
	printProducts(e.out, page.Products)
	fmt.Fprintf(e.out, "page %d, %d shown\n", page.Page, len(page.Products))
	return nil
}

func cmdProduct(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := e.client.Product(ctx, args[0])
	if err != nil {
		return err
	}
	printProduct(e.out, p)
	return nil
}

func cmdCategories(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	cats, err := e.client.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Fprintln(e.out, c)
	}
	return nil
}

// cartState opens a session for the configured token and loads the cart.
func cartState(ctx context.Context, e *env) (*shop.CartState, error) {
	cs := shop.NewCartState(e.client, e.log)
	cs.OnAuthRequired = func(error) {
		e.log.Warn().Msg("token rejected; mint one with `shop token --user <id>` and pass --token")
	}
	var sess *shop.Session
	if e.token != "" {
		sess = &shop.Session{UserID: e.user, Token: e.token}
	}
	if err := cs.SetSession(ctx, sess); err != nil {
		return nil, err
	}
	return cs, nil
}

func withCart(ctx context.Context, e *env, fn func(cs *shop.CartState) error) error {
	cs, err := cartState(ctx, e)
	if err != nil {
		return err
	}
	if err := fn(cs); err != nil {
		return err
	}
	printCart(e.out, cs)
	return nil
}

func cmdCart(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if e.token == "" {
		return fmt.Errorf("%w: no token", shop.ErrAuthRequired)
	}
	return withCart(ctx, e, func(*shop.CartState) error { return nil })
}

func cmdAdd(ctx context.Context, e *env, args []string) error {
	fs := subFlags("add")
	qty := fs.IntP("qty", "q", 1, "quantity to add")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	return withCart(ctx, e, func(cs *shop.CartState) error {
		return cs.Add(ctx, fs.Arg(0), *qty)
	})
}

func cmdUpdate(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	return withCart(ctx, e, func(cs *shop.CartState) error {
		return cs.Update(ctx, args[0], qty)
	})
}

func cmdRemove(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return withCart(ctx, e, func(cs *shop.CartState) error {
		return cs.Remove(ctx, args[0])
	})
}

func cmdClear(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return withCart(ctx, e, func(cs *shop.CartState) error {
		return cs.Clear(ctx)
	})
}

// cmdToken mints an HS256 token accepted by a server running AUTH_MODE=jwt
// with the same secret.
func cmdToken(_ context.Context, e *env, args []string) error {
	fs := subFlags("token")
	user := fs.StringP("user", "u", "", "user id (sub claim)")
	admin := fs.Bool("admin", false, "grant catalog write access")
	secret := fs.String("secret", envOr("JWT_SECRET", ""), "HS256 signing secret")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *user == "" || *secret == "" {
		return errUsage
	}
	tok, err := auth.Issue(*secret, *user, *admin, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, tok)
	return nil
}
