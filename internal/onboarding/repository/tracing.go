package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

var tracer = otel.Tracer("onboarding-repository")

// Store is a state store that can report its reachability
type Store interface {
	domain.StateStore
	Ping(ctx context.Context) error
}

// TracingStateStore wraps a Store with spans
type TracingStateStore struct {
	next    Store
	backend string
}

func NewTracingStateStore(next Store, backend string) *TracingStateStore {
	return &TracingStateStore{next: next, backend: backend}
}

func (t *TracingStateStore) Save(ctx context.Context, vendorID string, snapshot []byte) error {
	ctx, span := t.start(ctx, "repository.Save", vendorID)
	defer span.End()

	span.SetAttributes(attribute.Int("snapshot.size", len(snapshot)))
	return record(span, t.next.Save(ctx, vendorID, snapshot))
}

func (t *TracingStateStore) Load(ctx context.Context, vendorID string) ([]byte, error) {
	ctx, span := t.start(ctx, "repository.Load", vendorID)
	defer span.End()

	snapshot, err := t.next.Load(ctx, vendorID)
	if err != nil {
		return nil, record(span, err)
	}
	span.SetAttributes(attribute.Bool("snapshot.found", snapshot != nil))
	return snapshot, nil
}

func (t *TracingStateStore) Delete(ctx context.Context, vendorID string) error {
	ctx, span := t.start(ctx, "repository.Delete", vendorID)
	defer span.End()

	return record(span, t.next.Delete(ctx, vendorID))
}

func (t *TracingStateStore) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "repository.Ping", trace.WithAttributes(attribute.String("store.backend", t.backend)))
	defer span.End()

	return record(span, t.next.Ping(ctx))
}

func (t *TracingStateStore) start(ctx context.Context, name, vendorID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("store.backend", t.backend),
			attribute.String("vendor.id", vendorID),
		),
	)
}

func record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
