// Package firestore keeps products and carts in Cloud Firestore. Carts use
// the user id as document id; every write replaces the whole document.
package firestore

import (
	"context"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const (
	productsCollection = "products"
	cartsCollection    = "carts"
)

type Store struct {
	Client *firestore.Client
}

// Open connects to projectID. credFile may be empty to use the ambient
// credentials or FIRESTORE_EMULATOR_HOST.
func Open(ctx context.Context, projectID, credFile string) (*Store, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("project", projectID).Msg("firestore client ready")
	return &Store{Client: client}, nil
}

// Ping reads a single product reference; an empty collection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.Client.Collection(productsCollection).Select().Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *Store) Close() error { return s.Client.Close() }

func (s *Store) Products() *Products {
	return &Products{client: s.Client}
}

func (s *Store) Carts() *Carts {
	return &Carts{client: s.Client}
}

// validID reports whether id can name a single document directly under a
// collection. Anything else would address a different path.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." || strings.Contains(id, "/") || !utf8.ValidString(id) || len(id) > 1500 {
		return false
	}
	return !(strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"))
}
