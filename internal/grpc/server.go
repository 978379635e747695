package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/service"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
	pkglog "github.com/weiawesome/wes-io-live/snowflake-service/pkg/log"
)

type idServer struct {
	idService service.IDService
}

func (s *idServer) NextSnowflake(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	id, err := s.idService.NextSnowflake(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(id), nil
}

func (s *idServer) Generate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id, err := s.idService.Generate(ctx, idgen.ParseKind(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(id), nil
}

func (s *idServer) GenerateBatch(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	fields := req.GetFields()
	count := int(fields["count"].GetNumberValue())

	ids, err := s.idService.GenerateBatch(ctx, idgen.ParseKind(fields["type"].GetStringValue()), count)
	if err != nil {
		return nil, toStatus(err)
	}

	values := make([]*structpb.Value, len(ids))
	for i, id := range ids {
		values[i] = structpb.NewStringValue(id)
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *idServer) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	result, err := s.idService.Validate(ctx, idgen.ParseKind(fields["type"].GetStringValue()), fields["id"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"valid":  structpb.NewBoolValue(result.Valid),
		"reason": structpb.NewStringValue(result.Reason),
	}}, nil
}

func (s *idServer) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	parsed, err := s.idService.Parse(ctx, idgen.ParseKind(fields["type"].GetStringValue()), fields["id"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return fieldsToStruct(parsed), nil
}

// fieldsToStruct mirrors the JSON shape of idgen.Fields: nil parts and empty
// strings are omitted, set parts are kept even when zero.
func fieldsToStruct(f *idgen.Fields) *structpb.Struct {
	out := make(map[string]*structpb.Value)
	putPart := func(key string, v *int64) {
		if v != nil {
			out[key] = structpb.NewNumberValue(float64(*v))
		}
	}
	putInt := func(key string, v int64) {
		if v != 0 {
			out[key] = structpb.NewNumberValue(float64(v))
		}
	}
	putStr := func(key, v string) {
		if v != "" {
			out[key] = structpb.NewStringValue(v)
		}
	}
	putPart("timestamp_ms", f.TimestampMs)
	putPart("machine_id", f.MachineID)
	putPart("sequence", f.Sequence)
	putInt("uuid_version", int64(f.UUIDVersion))
	putStr("uuid_variant", f.UUIDVariant)
	putStr("random_payload", f.RandomPayload)
	putInt("id_length", int64(f.IDLength))
	putStr("alphabet", f.Alphabet)
	return &structpb.Struct{Fields: out}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, idgen.ErrUnknownType),
		errors.Is(err, service.ErrInvalidCount),
		errors.Is(err, service.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, snowflake.ErrClockRegression):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, snowflake.ErrBeforeEpoch),
		errors.Is(err, snowflake.ErrTimestampOverflow):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// NewServer builds a gRPC server exposing IDService and the standard health
// service.
func NewServer(idService service.IDService, logger zerolog.Logger) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(pkglog.UnaryServerInterceptor(logger)),
	)
	RegisterIDServiceServer(s, &idServer{idService: idService})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return s
}

// StartGRPCServer creates and starts the gRPC server in a background goroutine.
func StartGRPCServer(addr string, idService service.IDService, logger zerolog.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := NewServer(idService, logger)

	go func() {
		logger.Info().Str("addr", addr).Msg("grpc server listening")
		if err := s.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc server error")
		}
	}()

	return s, nil
}
