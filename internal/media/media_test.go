package media

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObject struct {
	bytes.Buffer
	name        string
	contentType string
	closed      bool
}

func (o *memObject) Close() error {
	o.closed = true
	return nil
}

func memBucket() (*Bucket, *[]*memObject) {
	var objects []*memObject
	open := func(_ context.Context, name, contentType string) io.WriteCloser {
		o := &memObject{name: name, contentType: contentType}
		objects = append(objects, o)
		return o
	}
	b := newBucket("shop-media", open, nil, nil)
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return b, &objects
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadStoresImageAndReturnsURL(t *testing.T) {
	b, objects := memBucket()
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)

	url, err := b.Upload(context.Background(), "shirt.png", bytes.NewReader(body))
	require.NoError(t, err)

	require.Len(t, *objects, 1)
	obj := (*objects)[0]
	assert.True(t, obj.closed)
	assert.Equal(t, "image/png", obj.contentType)
	assert.Equal(t, body, obj.Bytes())
	assert.True(t, strings.HasPrefix(obj.name, "products/1700000000000-"), obj.name)
	assert.True(t, strings.HasSuffix(obj.name, ".png"), obj.name)
	assert.Equal(t, "https://storage.googleapis.com/shop-media/"+obj.name, url)
}

func TestUploadRejectsNonImages(t *testing.T) {
	b, objects := memBucket()

	_, err := b.Upload(context.Background(), "notes.txt", strings.NewReader("hello there"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Empty(t, *objects)
}

func TestUploadRejectsOversized(t *testing.T) {
	b, _ := memBucket()
	body := io.MultiReader(bytes.NewReader(pngHeader), io.LimitReader(zeroReader{}, MaxUploadBytes))

	_, err := b.Upload(context.Background(), "huge.png", body)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "a.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
