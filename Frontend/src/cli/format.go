package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Frontend/src/shop"
)

func money(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

func rating(r *float64) string {
	if r == nil {
		return "-"
	}
	return humanize.FtoaWithDigits(*r, 1)
}

func printProducts(w io.Writer, ps []catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tSTOCK")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Category, money(p.Price), rating(p.Rating), humanize.Comma(int64(p.CountInStock)))
	}
	_ = tw.Flush()
}

func printProduct(w io.Writer, p *catalog.Product) {
	fmt.Fprintf(w, "%s\n  id:       %s\n  category: %s\n  price:    %s\n  rating:   %s\n  stock:    %s\n",
		p.Name, p.ID, p.Category, money(p.Price), rating(p.Rating), humanize.Comma(int64(p.CountInStock)))
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  added:    %s\n", humanize.Time(p.CreatedAt))
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

func printCart(w io.Writer, cs *shop.CartState) {
	items := cs.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ProductID, it.Name, it.Quantity, money(it.Price), money(it.Total()))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%s items, total %s\n", humanize.Comma(int64(cs.TotalItems())), money(cs.TotalPrice()))
}
