// Package firestore stores one basket document per user in the "baskets"
// collection; the document id is the user name.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

const collection = "baskets"

var _ ports.BasketRepository = (*Store)(nil)

type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

// NewClient honours FIRESTORE_EMULATOR_HOST, which the firestore package
// reads on its own. credentialsFile may be empty to use ADC.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: new client: %w", err)
	}
	return client, nil
}

type basketDoc struct {
	UserName  string    `firestore:"userName"`
	Items     []itemDoc `firestore:"items"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Prices are kept as decimal strings; Firestore numbers are float64.
type itemDoc struct {
	ProductID   string `firestore:"productId"`
	ProductName string `firestore:"productName"`
	Price       string `firestore:"price"`
	Quantity    int    `firestore:"quantity"`
	Color       string `firestore:"color,omitempty"`
}

func (s *Store) col() *firestore.CollectionRef {
	return s.client.Collection(collection)
}

func (s *Store) Load(ctx context.Context, userName string) (*domain.ShoppingCart, bool, error) {
	snap, err := s.col().Doc(userName).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %q: %w", domain.ErrStoreFailure, userName, err)
	}

	var doc basketDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, false, fmt.Errorf("%w: decode %q: %w", domain.ErrStoreFailure, userName, err)
	}
	cart, err := doc.toDomain(userName)
	if err != nil {
		return nil, false, fmt.Errorf("%w: decode %q: %w", domain.ErrStoreFailure, userName, err)
	}
	return cart, true, nil
}

// Save overwrites the full document.
func (s *Store) Save(ctx context.Context, cart *domain.ShoppingCart) error {
	if _, err := s.col().Doc(cart.UserName).Set(ctx, docFromDomain(cart)); err != nil {
		return fmt.Errorf("%w: save %q: %w", domain.ErrStoreFailure, cart.UserName, err)
	}
	return nil
}

// Delete of a missing document succeeds; Firestore deletes are idempotent.
func (s *Store) Delete(ctx context.Context, userName string) error {
	if _, err := s.col().Doc(userName).Delete(ctx); err != nil {
		return fmt.Errorf("%w: delete %q: %w", domain.ErrStoreFailure, userName, err)
	}
	return nil
}

func docFromDomain(cart *domain.ShoppingCart) basketDoc {
	items := make([]itemDoc, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = itemDoc{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price.String(),
			Quantity:    it.Quantity,
			Color:       it.Color,
		}
	}
	return basketDoc{UserName: cart.UserName, Items: items, UpdatedAt: time.Now().UTC()}
}

// toDomain trusts the document id over the stored userName field.
func (d basketDoc) toDomain(docID string) (*domain.ShoppingCart, error) {
	cart := domain.NewShoppingCart(docID)
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("item %q price %q: %w", it.ProductID, it.Price, err)
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       price,
			Quantity:    it.Quantity,
			Color:       it.Color,
		})
	}
	return cart, nil
}
