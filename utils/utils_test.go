package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsKnownBrand(t *testing.T) {
	assert.Len(t, KnownBrands, 28)

	tests := []struct {
		brand string
		want  bool
	}{
		{"Citroën", true},
		{"KIA Motors", true},
		{"Yamaha", true},
		{"Tesla", false},
		{"ford", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			assert.Equal(t, tt.want, IsKnownBrand(tt.brand))
		})
	}
}

func TestRequestIDFrom(t *testing.T) {
	assert.Equal(t, "", RequestIDFrom(context.Background()))
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}

func TestTimeHelpers(t *testing.T) {
	assert.Equal(t, time.UTC, UTCNow().Location())
	assert.True(t, IsExpired(UTCNowAdd(-time.Minute)))
	assert.False(t, IsExpired(UTCNowAdd(time.Minute)))
	assert.Equal(t, 3, *ToPtr(3))
}
