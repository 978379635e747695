package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls IDService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) NextSnowflake(ctx context.Context, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod(methodNextSnowflake), &emptypb.Empty{}, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Generate(ctx context.Context, idType string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod(methodGenerate), wrapperspb.String(idType), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *Client) GenerateBatch(ctx context.Context, idType string, count int, opts ...grpc.CallOption) ([]string, error) {
	in, err := structpb.NewStruct(map[string]any{"type": idType, "count": count})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod(methodGenerateBatch), in, out, opts...); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		ids = append(ids, v.GetStringValue())
	}
	return ids, nil
}

func (c *Client) Validate(ctx context.Context, idType, id string, opts ...grpc.CallOption) (bool, string, error) {
	out, err := c.call(ctx, methodValidate, idType, id, opts...)
	if err != nil {
		return false, "", err
	}
	f := out.GetFields()
	return f["valid"].GetBoolValue(), f["reason"].GetStringValue(), nil
}

// Parse returns the parsed fields as a plain map.
func (c *Client) Parse(ctx context.Context, idType, id string, opts ...grpc.CallOption) (map[string]any, error) {
	out, err := c.call(ctx, methodParse, idType, id, opts...)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) call(ctx context.Context, method, idType, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"type": structpb.NewStringValue(idType),
		"id":   structpb.NewStringValue(id),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
