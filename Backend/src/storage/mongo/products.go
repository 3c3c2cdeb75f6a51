package mongo

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type productDoc struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description"`
	Price        primitive.Decimal128 `bson:"price"`
	Category     string               `bson:"category"`
	Image        string               `bson:"image,omitempty"`
	CountInStock int                  `bson:"countInStock"`
	Rating       *float64             `bson:"rating,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func toProductDoc(p *catalog.Product) (productDoc, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        price,
		Category:     p.Category,
		Image:        p.Image,
		CountInStock: p.CountInStock,
		Rating:       p.Rating,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}, nil
}

func (d productDoc) product() (catalog.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Product{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        price,
		Category:     d.Category,
		Image:        d.Image,
		CountInStock: d.CountInStock,
		Rating:       d.Rating,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

type Products struct{ coll *mongo.Collection }

var _ catalog.Repository = (*Products)(nil)

// Missing ratings compare lowest, so a descending sort leaves them last.
var sortSpec = map[catalog.Sort]bson.D{
	catalog.SortFeatured:   {{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	catalog.SortPriceAsc:   {{Key: "price", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	catalog.SortPriceDesc:  {{Key: "price", Value: -1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	catalog.SortRatingDesc: {{Key: "rating", Value: -1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	catalog.SortNewest:     {{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
}

func (r *Products) Insert(ctx context.Context, p *catalog.Product) error {
	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

func (r *Products) Get(ctx context.Context, id string) (*catalog.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fault.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	p, err := doc.product()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func filterFor(q catalog.Query) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	return filter
}

func (r *Products) Find(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	opts := options.Find().SetSort(sortSpec[q.Sort]).SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cursor, err := r.coll.Find(ctx, filterFor(q), opts)
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Products) Categories(ctx context.Context) ([]string, error) {
	vals, err := r.coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *Products) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
