package media

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	p := ObjectPath("avatars/u-1", "Me.PNG")
	assert.True(t, strings.HasPrefix(p, "avatars/u-1/"), p)
	assert.True(t, strings.HasSuffix(p, ".png"), p)
	assert.NotEqual(t, p, ObjectPath("avatars/u-1", "Me.PNG"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/avatars/x.png", PublicURL("b", "avatars/x.png"))
}

func TestUpload_NotConfigured(t *testing.T) {
	_, err := NewGCSUploader(nil, "").Upload(context.Background(), "avatars", "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
