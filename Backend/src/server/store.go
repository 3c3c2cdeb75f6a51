package main

import (
	"context"
	"fmt"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/config"
	"github.com/ahinestrog/smartkart/Backend/src/storage/firestore"
	"github.com/ahinestrog/smartkart/Backend/src/storage/mongo"
	"github.com/ahinestrog/smartkart/Backend/src/storage/sqlite"
)

// stores is the Product Store and Cart Store pair behind one driver.
type stores struct {
	products catalog.Repository
	carts    cart.Repository
	ping     func(ctx context.Context) error
	close    func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case "sqlite", "":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return &stores{
			products: s.Products(),
			carts:    s.Carts(),
			ping:     s.Ping,
			close:    func(context.Context) error { return s.Close() },
		}, nil
	case "mongo":
		s, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return &stores{products: s.Products(), carts: s.Carts(), ping: s.Ping, close: s.Close}, nil
	case "firestore":
		if cfg.FirestoreProjID == "" {
			return nil, fmt.Errorf("firestore: FIRESTORE_PROJECT_ID is required")
		}
		s, err := firestore.Open(ctx, cfg.FirestoreProjID, cfg.GCPCredentials)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		return &stores{
			products: s.Products(),
			carts:    s.Carts(),
			ping:     s.Ping,
			close:    func(context.Context) error { return s.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
