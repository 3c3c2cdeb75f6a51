package cart

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

func line(id, price string, qty int) LineItem {
	return LineItem{ProductID: id, Name: "item " + id, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestCartMerge(t *testing.T) {
	c := New("u1")
	c.Add(line("p1", "10.00", 2))
	c.Add(LineItem{ProductID: "p1", Name: "renamed", Price: decimal.RequireFromString("99"), Quantity: 3})

	if len(c.Items) != 1 {
		t.Fatalf("lines = %d, want 1", len(c.Items))
	}
	it := c.Items[0]
	if it.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", it.Quantity)
	}
	if it.Name != "item p1" || !it.Price.Equal(decimal.RequireFromString("10")) {
		t.Errorf("snapshot overwritten: %+v", it)
	}
}

func TestCartTotals(t *testing.T) {
	c := New("u1")
	c.Add(line("p1", "0.10", 3))
	c.Add(line("p2", "199.99", 2))

	if got := c.TotalItems(); got != 5 {
		t.Errorf("TotalItems = %d", got)
	}
	if got := c.TotalPrice().String(); got != "400.28" {
		t.Errorf("TotalPrice = %s", got)
	}

	c.SetQuantity("p2", 1)
	v := c.View()
	if v.TotalItems != 4 || v.TotalPrice.String() != "200.29" {
		t.Errorf("view after update = %+v", v)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	c := New("u1")
	c.Add(line("p1", "1", 1))
	c.Add(line("p2", "2", 1))

	if c.Remove("missing") {
		t.Error("removing an absent product reported a change")
	}
	if !c.Remove("p1") || len(c.Items) != 1 || c.Items[0].ProductID != "p2" {
		t.Errorf("after remove: %+v", c.Items)
	}
	if c.SetQuantity("p1", 4) {
		t.Error("SetQuantity on a removed line reported success")
	}
	if !c.Clear() || c.Clear() {
		t.Error("Clear should report a change exactly once")
	}
	v := c.View()
	if len(v.Items) != 0 || v.TotalItems != 0 || !v.TotalPrice.IsZero() {
		t.Errorf("cleared view = %+v", v)
	}
}

func TestCartAddCapsQuantity(t *testing.T) {
	c := New("u1")
	if err := c.Add(line("p1", "1", MaxQuantity)); err != nil {
		t.Fatalf("add at the cap: %v", err)
	}
	for _, qty := range []int{1, 2, math.MaxInt} {
		if err := c.Add(line("p1", "1", qty)); !fault.Is(err, codes.InvalidArgument) {
			t.Errorf("merge of %d past the cap: %v", qty, err)
		}
	}
	if c.Items[0].Quantity != MaxQuantity || c.TotalItems() != MaxQuantity {
		t.Errorf("quantity = %d, totalItems = %d", c.Items[0].Quantity, c.TotalItems())
	}
	if c.TotalPrice().IsNegative() {
		t.Errorf("total = %s", c.TotalPrice())
	}

	for _, qty := range []int{0, -1, MaxQuantity + 1, math.MaxInt} {
		if err := c.Add(line("p2", "1", qty)); !fault.Is(err, codes.InvalidArgument) {
			t.Errorf("new line of %d: %v", qty, err)
		}
	}
	if len(c.Items) != 1 {
		t.Errorf("rejected adds created lines: %+v", c.Items)
	}
}
