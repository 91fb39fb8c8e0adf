package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/jcmexdev/ecommerce-basket/internal/discount-service/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-basket/internal/discount-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/discountrpc"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// serve starts the server over bufconn and returns a client for it.
func serve(t *testing.T, repo CouponRepository) *discountrpc.Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	discountrpc.RegisterDiscountServer(s, NewDiscountServer(repo, quiet()))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return discountrpc.NewClient(conn)
}

func seeded(t *testing.T) *discountrpc.Client {
	t.Helper()
	repo, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "discount.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return serve(t, repo)
}

func TestGetDiscountSeeded(t *testing.T) {
	c := seeded(t)

	got, err := c.GetDiscount(context.Background(), "IPhone X")

	assert.NoError(t, err)
	assert.Equal(t, "IPhone X", got.ProductName)
	assert.Equal(t, "150", got.Amount.String())
}

func TestGetDiscountUnknownIsNoDiscount(t *testing.T) {
	c := seeded(t)

	got, err := c.GetDiscount(context.Background(), "Nokia")

	assert.NoError(t, err)
	assert.Equal(t, "No Discount", got.ProductName)
	assert.True(t, got.Amount.IsZero())
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	c := seeded(t)

	created, err := c.CreateDiscount(ctx, discountrpc.Coupon{ProductName: "Pixel", Description: "d", Amount: decimal.RequireFromString("12.50")})
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := c.GetDiscount(ctx, "Pixel")
	assert.NoError(t, err)
	assert.Equal(t, "12.50", got.Amount.StringFixed(2))
}

func TestCreateRequiresProductName(t *testing.T) {
	c := seeded(t)

	_, err := c.CreateDiscount(context.Background(), discountrpc.Coupon{Amount: decimal.NewFromInt(1)})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	c := seeded(t)

	_, err := c.UpdateDiscount(ctx, discountrpc.Coupon{ProductName: "IPhone X"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.UpdateDiscount(ctx, discountrpc.Coupon{ID: 999, ProductName: "Ghost"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUpdateSeeded(t *testing.T) {
	ctx := context.Background()
	c := seeded(t)
	current, err := c.GetDiscount(ctx, "Samsung 10")
	assert.NoError(t, err)

	current.Amount = decimal.NewFromInt(40)
	_, err = c.UpdateDiscount(ctx, current)
	assert.NoError(t, err)

	got, err := c.GetDiscount(ctx, "Samsung 10")
	assert.NoError(t, err)
	assert.Equal(t, "40", got.Amount.String())
}

func TestDeleteDiscount(t *testing.T) {
	ctx := context.Background()
	c := seeded(t)

	ok, err := c.DeleteDiscount(ctx, "IPhone X")
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = c.DeleteDiscount(ctx, "IPhone X")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

type brokenRepo struct{ CouponRepository }

func (brokenRepo) GetByProductName(context.Context, string) (domain.Coupon, error) {
	return domain.Coupon{}, errors.New("disk gone")
}

func TestGetDiscountStorageFailureIsInternal(t *testing.T) {
	c := serve(t, brokenRepo{})

	_, err := c.GetDiscount(context.Background(), "IPhone X")

	assert.Equal(t, codes.Internal, status.Code(err))
}
