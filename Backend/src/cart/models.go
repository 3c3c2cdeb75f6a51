package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

// MaxQuantity bounds a single line, including after merges.
const MaxQuantity = 10_000

func checkQuantity(qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return fault.InvalidArgument("quantity must be between 1 and %d", MaxQuantity)
	}
	return nil
}

// LineItem snapshots the product's name, price and image when it is first
// added. Later adds of the same product only raise the quantity.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (it LineItem) Total() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []LineItem `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID, Items: []LineItem{}}
}

func (c *Cart) index(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges it into the cart. An existing line keeps its snapshot. The cart
// is left unchanged when the merged quantity would exceed MaxQuantity.
func (c *Cart) Add(it LineItem) error {
	if err := checkQuantity(it.Quantity); err != nil {
		return err
	}
	i := c.index(it.ProductID)
	if i < 0 {
		c.Items = append(c.Items, it)
		return nil
	}
	if c.Items[i].Quantity > MaxQuantity-it.Quantity {
		return fault.InvalidArgument("cart already holds %d of %s; at most %d allowed",
			c.Items[i].Quantity, it.ProductID, MaxQuantity)
	}
	c.Items[i].Quantity += it.Quantity
	return nil
}

// SetQuantity reports false when the product has no line.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = qty
	return true
}

func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

func (c *Cart) Clear() bool {
	had := len(c.Items) > 0
	c.Items = []LineItem{}
	return had
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Total())
	}
	return sum
}

// View is the wire form of a cart. Totals are computed here on every read
// and never stored.
type View struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (c *Cart) View() View {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return View{Items: items, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}
