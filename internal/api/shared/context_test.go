package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("generated", func(t *testing.T) {
		ctx := SetTraceID(context.Background())
		id := GetTraceID(ctx)
		assert.Len(t, id, TraceIDLength*2)
		assert.Regexp(t, "^[0-9a-f]+$", id)
		assert.NotEqual(t, id, GetTraceID(SetTraceID(context.Background())))
	})

	t.Run("explicit", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "host/abc-000001")
		assert.Equal(t, "host/abc-000001", GetTraceID(ctx))
	})

	t.Run("empty explicit value is replaced", func(t *testing.T) {
		assert.Len(t, GetTraceID(WithTraceID(context.Background(), "")), TraceIDLength*2)
	})

	t.Run("fallback", func(t *testing.T) {
		assert.Len(t, generateFallbackTraceID(), TraceIDLength*2)
	})
}
