package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/jcmexdev/ecommerce-basket/internal/discount-service/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-basket/internal/discount-service/app"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/discountrpc"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/interceptors"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/telemetry"
)

var cli struct {
	GRPCAddr  string           `name:"grpc-addr" help:"gRPC listen address." env:"GRPC_ADDR" default:":9090"`
	DBPath    string           `name:"db-path" help:"SQLite database file." env:"DISCOUNT_DB_PATH" default:"./data/discount.db"`
	Telemetry telemetry.Config `embed:""`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("discount-service"),
		kong.Description("Discount gRPC pricing authority."),
		kong.UsageOnError(),
	)
	logger := telemetry.InitLogger(cli.Telemetry.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cli.Telemetry.TracerConfig("discount-service"))
	kctx.FatalIfErrorf(err, "failed to initialise tracer")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cli.DBPath), 0o755); err != nil {
		kctx.FatalIfErrorf(err, "failed to create data directory")
	}
	repo, err := sqlite.Open(ctx, cli.DBPath)
	kctx.FatalIfErrorf(err, "failed to open coupon database")
	defer repo.Close()

	lis, err := net.Listen("tcp", cli.GRPCAddr)
	kctx.FatalIfErrorf(err, "failed to listen on %s", cli.GRPCAddr)

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.RequestIDServerInterceptor(),
			interceptors.LoggingServerInterceptor(logger),
		),
	)
	discountrpc.RegisterDiscountServer(grpcServer, app.NewDiscountServer(repo, logger))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down discount service")
		grpcServer.GracefulStop()
	}()

	logger.Info("discount service gRPC running", "addr", cli.GRPCAddr, "db", cli.DBPath)
	if err := grpcServer.Serve(lis); err != nil {
		logger.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}
