package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/idgen"
)

// IDService defines the id issuing operations shared by the HTTP and gRPC
// transports.
type IDService interface {
	Generate(ctx context.Context, kind idgen.Kind) (string, error)
	GenerateBatch(ctx context.Context, kind idgen.Kind, count int) ([]string, error)
	Validate(ctx context.Context, kind idgen.Kind, id string) (*ValidateResult, error)
	Parse(ctx context.Context, kind idgen.Kind, id string) (*idgen.Fields, error)
	NextSnowflake(ctx context.Context) (int64, error)
	Encodings(ctx context.Context, id, from string) (map[string]string, error)
}

// ValidateResult is the outcome of Validate.
type ValidateResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
