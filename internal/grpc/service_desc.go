package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "wesio.id.v1.IDService"

const (
	methodNextSnowflake = "NextSnowflake"
	methodGenerate      = "Generate"
	methodGenerateBatch = "GenerateBatch"
	methodValidate      = "Validate"
	methodParse         = "Parse"
)

// IDServiceServer is the server API. Messages are protobuf well-known types:
//
//	NextSnowflake(Empty) Int64Value
//	Generate(StringValue type) StringValue id
//	GenerateBatch(Struct{type, count}) ListValue of ids
//	Validate(Struct{type, id}) Struct{valid, reason}
//	Parse(Struct{type, id}) Struct of fields
type IDServiceServer interface {
	NextSnowflake(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	Generate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	GenerateBatch(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterIDServiceServer registers srv on s.
func RegisterIDServiceServer(s grpc.ServiceRegistrar, srv IDServiceServer) {
	s.RegisterService(&idServiceDesc, srv)
}

var idServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IDServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(methodNextSnowflake, IDServiceServer.NextSnowflake),
		unary(methodGenerate, IDServiceServer.Generate),
		unary(methodGenerateBatch, IDServiceServer.GenerateBatch),
		unary(methodValidate, IDServiceServer.Validate),
		unary(methodParse, IDServiceServer.Parse),
	},
	Streams: []grpc.StreamDesc{},
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the MethodDesc protoc-gen-go-grpc would emit for a unary call.
func unary[Req any, Resp proto.Message, PReq interface {
	*Req
	proto.Message
}](name string, call func(IDServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IDServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IDServiceServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
