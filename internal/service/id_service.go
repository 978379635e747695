package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
	"github.com/weiawesome/wes-io-live/snowflake-service/pkg/log"
)

const DefaultMaxBatch = 1000

var (
	ErrInvalidCount = idgen.ErrInvalidCount
	ErrInvalidID    = errors.New("invalid id")
)

// idServiceImpl implements IDService.
type idServiceImpl struct {
	registry  *idgen.Registry
	snowflake *snowflake.Generator
	maxBatch  int
	metrics   *metrics.Registry
}

// NewIDService creates a new id service. core backs NextSnowflake and may be
// the same generator wrapped in the registry. m may be nil.
func NewIDService(registry *idgen.Registry, core *snowflake.Generator, maxBatch int, m *metrics.Registry) IDService {
	if maxBatch < 1 {
		maxBatch = DefaultMaxBatch
	}
	return &idServiceImpl{
		registry:  registry,
		snowflake: core,
		maxBatch:  maxBatch,
		metrics:   m,
	}
}

// Generate issues one id of kind.
func (s *idServiceImpl) Generate(ctx context.Context, kind idgen.Kind) (string, error) {
	gen, err := s.lookup("generate", kind)
	if err != nil {
		return "", err
	}

	id, err := gen.Generate()
	if err != nil {
		s.fail(ctx, "generate", kind, err)
		return "", fmt.Errorf("failed to generate %s id: %w", kind, err)
	}

	s.metrics.Request("generate", string(kind), metrics.OutcomeOK)
	s.metrics.Issued(string(kind), 1)
	return id, nil
}

// GenerateBatch issues count ids of kind, 1 <= count <= maxBatch.
func (s *idServiceImpl) GenerateBatch(ctx context.Context, kind idgen.Kind, count int) ([]string, error) {
	if count < 1 || count > s.maxBatch {
		s.metrics.Request("generate_batch", s.label(kind), metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidCount, s.maxBatch, count)
	}

	gen, err := s.lookup("generate_batch", kind)
	if err != nil {
		return nil, err
	}

	ids, err := gen.GenerateBatch(count)
	if err != nil {
		s.fail(ctx, "generate_batch", kind, err)
		return nil, fmt.Errorf("failed to generate %s batch: %w", kind, err)
	}

	s.metrics.Request("generate_batch", string(kind), metrics.OutcomeOK)
	s.metrics.Issued(string(kind), len(ids))
	return ids, nil
}

// Validate checks id against the rules of kind.
func (s *idServiceImpl) Validate(ctx context.Context, kind idgen.Kind, id string) (*ValidateResult, error) {
	gen, err := s.lookup("validate", kind)
	if err != nil {
		return nil, err
	}

	valid, reason := gen.Validate(id)
	s.metrics.Request("validate", string(kind), metrics.OutcomeOK)
	return &ValidateResult{Valid: valid, Reason: reason}, nil
}

// Parse extracts the fields encoded in id.
func (s *idServiceImpl) Parse(ctx context.Context, kind idgen.Kind, id string) (*idgen.Fields, error) {
	gen, err := s.lookup("parse", kind)
	if err != nil {
		return nil, err
	}

	fields, err := gen.Parse(id)
	if err != nil {
		s.metrics.Request("parse", string(kind), metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	s.metrics.Request("parse", string(kind), metrics.OutcomeOK)
	return fields, nil
}

// NextSnowflake returns a raw snowflake id.
func (s *idServiceImpl) NextSnowflake(ctx context.Context) (int64, error) {
	id, err := s.snowflake.Generate()
	if err != nil {
		s.fail(ctx, "next_snowflake", idgen.KindSnowflake, err)
		return 0, err
	}

	s.metrics.Request("next_snowflake", string(idgen.KindSnowflake), metrics.OutcomeOK)
	s.metrics.Issued(string(idgen.KindSnowflake), 1)
	return id, nil
}

// Encodings decodes id from the named encoding and renders it in all of them.
func (s *idServiceImpl) Encodings(ctx context.Context, id, from string) (map[string]string, error) {
	enc, err := snowflake.ParseEncoding(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	n, err := enc.Decode(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: id must be a positive integer", ErrInvalidID)
	}

	out := make(map[string]string, len(snowflake.Encodings))
	for _, e := range snowflake.Encodings {
		out[string(e)] = e.Encode(n)
	}
	return out, nil
}

func (s *idServiceImpl) lookup(operation string, kind idgen.Kind) (idgen.Generator, error) {
	gen, err := s.registry.Lookup(kind)
	if err != nil {
		s.metrics.Request(operation, s.label(kind), metrics.OutcomeRejected)
		return nil, err
	}
	return gen, nil
}

// label keeps unregistered kinds out of metric label values.
func (s *idServiceImpl) label(kind idgen.Kind) string {
	if _, err := s.registry.Lookup(kind); err != nil {
		return "unknown"
	}
	return string(kind)
}

func (s *idServiceImpl) fail(ctx context.Context, operation string, kind idgen.Kind, err error) {
	s.metrics.Request(operation, string(kind), metrics.OutcomeError)

	l := log.Ctx(ctx)
	evt := l.Error()
	if errors.Is(err, snowflake.ErrClockRegression) {
		evt = l.Warn()
	}
	evt.Err(err).
		Str(log.FieldIDType, string(kind)).
		Str(log.FieldOperation, operation).
		Msg("id generation failed")
}
