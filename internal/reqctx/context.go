package reqctx

import "context"

type ctxKey string

const (
	keyRID       ctxKey = "mod_rid"
	keyListingID ctxKey = "mod_listing_id"
)

// WithRID stores correlation id for moderation logs.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithListingID stores listing id for moderation logs.
func WithListingID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyListingID, id)
}

// ListingID returns listing id if present.
func ListingID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyListingID).(uint64)
	return v
}
