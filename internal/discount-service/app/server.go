package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/ecommerce-basket/internal/discount-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/discountrpc"
)

// CouponRepository is the storage port of the discount service.
type CouponRepository interface {
	GetByProductName(ctx context.Context, productName string) (domain.Coupon, error)
	GetByID(ctx context.Context, id int64) (domain.Coupon, error)
	Create(ctx context.Context, c domain.Coupon) (domain.Coupon, error)
	Update(ctx context.Context, c domain.Coupon) (domain.Coupon, error)
	DeleteByProductName(ctx context.Context, productName string) error
}

var _ discountrpc.DiscountServer = (*Server)(nil)

type Server struct {
	coupons CouponRepository
	logger  *slog.Logger
}

func NewDiscountServer(coupons CouponRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{coupons: coupons, logger: logger}
}

// GetDiscount never reports a missing coupon as an error; it answers with the
// zero-amount "No Discount" coupon instead.
func (s *Server) GetDiscount(ctx context.Context, productName string) (discountrpc.Coupon, error) {
	c, err := s.coupons.GetByProductName(ctx, productName)
	if errors.Is(err, domain.ErrCouponNotFound) {
		c = domain.NoDiscount()
	} else if err != nil {
		s.logger.ErrorContext(ctx, "discount lookup failed", "product_name", productName, "error", err)
		return discountrpc.Coupon{}, status.Error(codes.Internal, "discount lookup failed")
	}

	s.logger.InfoContext(ctx, "discount retrieved", "product_name", c.ProductName, "amount", c.Amount.String())
	return toRPC(c), nil
}

func (s *Server) CreateDiscount(ctx context.Context, in discountrpc.Coupon) (discountrpc.Coupon, error) {
	if strings.TrimSpace(in.ProductName) == "" {
		return discountrpc.Coupon{}, status.Error(codes.InvalidArgument, "invalid request object")
	}
	c, err := s.coupons.Create(ctx, fromRPC(in))
	if err != nil {
		s.logger.ErrorContext(ctx, "discount create failed", "product_name", in.ProductName, "error", err)
		return discountrpc.Coupon{}, status.Error(codes.Internal, "discount create failed")
	}

	s.logger.InfoContext(ctx, "discount created", "product_name", c.ProductName)
	return toRPC(c), nil
}

func (s *Server) UpdateDiscount(ctx context.Context, in discountrpc.Coupon) (discountrpc.Coupon, error) {
	if in.ID == 0 {
		return discountrpc.Coupon{}, status.Error(codes.InvalidArgument, "invalid request object")
	}
	c, err := s.coupons.Update(ctx, fromRPC(in))
	if errors.Is(err, domain.ErrCouponNotFound) {
		return discountrpc.Coupon{}, status.Errorf(codes.NotFound, "discount with id=%d is not found", in.ID)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "discount update failed", "id", in.ID, "error", err)
		return discountrpc.Coupon{}, status.Error(codes.Internal, "discount update failed")
	}

	s.logger.InfoContext(ctx, "discount updated", "product_name", c.ProductName)
	return toRPC(c), nil
}

func (s *Server) DeleteDiscount(ctx context.Context, productName string) (bool, error) {
	err := s.coupons.DeleteByProductName(ctx, productName)
	if errors.Is(err, domain.ErrCouponNotFound) {
		return false, status.Errorf(codes.NotFound, "discount with productName=%s is not found", productName)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "discount delete failed", "product_name", productName, "error", err)
		return false, status.Error(codes.Internal, "discount delete failed")
	}

	s.logger.InfoContext(ctx, "discount deleted", "product_name", productName)
	return true, nil
}

func toRPC(c domain.Coupon) discountrpc.Coupon {
	return discountrpc.Coupon{ID: c.ID, ProductName: c.ProductName, Description: c.Description, Amount: c.Amount}
}

func fromRPC(c discountrpc.Coupon) domain.Coupon {
	return domain.Coupon{ID: c.ID, ProductName: c.ProductName, Description: c.Description, Amount: c.Amount}
}
