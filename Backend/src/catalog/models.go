package catalog

import (
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

// PageSize is fixed; clients page with the 1-based page number only.
const PageSize = 12

// MaxPage is the last page whose offset still fits in an int.
const MaxPage = math.MaxInt/PageSize + 1

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Image        string          `json:"image,omitempty"`
	CountInStock int             `json:"countInStock"`
	Rating       *float64        `json:"rating,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Image = strings.TrimSpace(p.Image)

	if p.Name == "" {
		return fault.InvalidArgument("name is required")
	}
	if p.Category == "" {
		return fault.InvalidArgument("category is required")
	}
	if p.Price.IsNegative() {
		return fault.InvalidArgument("price must be >= 0")
	}
	if p.CountInStock < 0 {
		return fault.InvalidArgument("countInStock must be >= 0")
	}
	if p.Image != "" {
		u, err := url.Parse(p.Image)
		if err != nil || !u.IsAbs() {
			return fault.InvalidArgument("image must be an absolute URI")
		}
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return fault.InvalidArgument("rating must be within [0,5]")
	}
	return nil
}

type Sort int

const (
	SortFeatured Sort = iota
	SortPriceAsc
	SortPriceDesc
	SortRatingDesc
	SortNewest
)

var sortNames = map[string]Sort{
	"":            SortFeatured,
	"featured":    SortFeatured,
	"price-asc":   SortPriceAsc,
	"price-low":   SortPriceAsc,
	"price-desc":  SortPriceDesc,
	"price-high":  SortPriceDesc,
	"rating":      SortRatingDesc,
	"rating-desc": SortRatingDesc,
	"newest":      SortNewest,
}

func ParseSort(s string) (Sort, error) {
	v, ok := sortNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fault.InvalidArgument("unknown sort %q", s)
	}
	return v, nil
}

func (s Sort) String() string {
	switch s {
	case SortPriceAsc:
		return "price-asc"
	case SortPriceDesc:
		return "price-desc"
	case SortRatingDesc:
		return "rating"
	case SortNewest:
		return "newest"
	default:
		return "featured"
	}
}

// Filter is what a shopper asks for; Query is what a store executes.
type Filter struct {
	Search   string
	Category string
	Sort     string
	Page     int
}

type Query struct {
	Search   string
	Category string
	Sort     Sort
	Offset   int
	Limit    int
}

func (f Filter) Query() (Query, error) {
	s, err := ParseSort(f.Sort)
	if err != nil {
		return Query{}, err
	}
	if f.Page < 0 || f.Page > MaxPage {
		return Query{}, fault.InvalidArgument("page must be between 1 and %d", MaxPage)
	}
	page := f.Page
	if page == 0 {
		page = 1
	}
	cat := strings.TrimSpace(f.Category)
	if strings.EqualFold(cat, "all") {
		cat = ""
	}
	return Query{
		Search:   strings.TrimSpace(f.Search),
		Category: cat,
		Sort:     s,
		Offset:   (page - 1) * PageSize,
		Limit:    PageSize,
	}, nil
}
