package auditlog

import "context"

type Metadata struct {
	Backend      string
	InstanceID   string
	InstanceName string
}

type metadataKey struct{}

// WithMetadata attaches audit metadata to a context.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(metadataKey{}).(Metadata)
	merged := Metadata{
		Backend:      pick(meta.Backend, existing.Backend),
		InstanceID:   pick(meta.InstanceID, existing.InstanceID),
		InstanceName: pick(meta.InstanceName, existing.InstanceName),
	}
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns audit metadata stored in the context.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}
