// Package discount adapts the discount gRPC service to ports.DiscountClient.
package discount

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/discountrpc"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/interceptors"
)

const DefaultTimeout = 2 * time.Second

var _ ports.DiscountClient = (*GRPCDiscountClient)(nil)

// GRPCDiscountClient fails closed: every transport or server error becomes
// an unavailable quote.
type GRPCDiscountClient struct {
	rpc     *discountrpc.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewGRPCDiscountClient(cc grpc.ClientConnInterface, timeout time.Duration, logger *slog.Logger) *GRPCDiscountClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCDiscountClient{rpc: discountrpc.NewClient(cc), timeout: timeout, logger: logger}
}

// Dial opens an instrumented connection to the discount service. The
// connection is lazy; an unreachable address surfaces as unavailable quotes.
func Dial(addr string, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(interceptors.RequestIDClientInterceptor()),
	}, extra...)
	return grpc.NewClient(addr, opts...)
}

func (c *GRPCDiscountClient) Quote(ctx context.Context, productName string) (ports.Quote, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	coupon, err := c.rpc.GetDiscount(ctx, productName)
	if err != nil {
		c.logger.WarnContext(ctx, "discount unavailable",
			"product_name", productName,
			"code", status.Code(err).String(),
			"error", fmt.Errorf("%w: discount %q: %w", domain.ErrUpstreamUnavailable, productName, err),
		)
		return ports.Quote{}, false
	}
	return ports.Quote{Amount: coupon.Amount, Description: coupon.Description}, true
}
