package blob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentKey(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	assert.Regexp(t, `^u1/1767225600123-[0-9a-f-]{36}\.pdf$`, AttachmentKey("u1", "Invoice.PDF", at))
	assert.Regexp(t, `^u1/1767225600123-[0-9a-f-]{36}$`, AttachmentKey("u1", "README", at))
	assert.Regexp(t, `^u1/1767225600123-[0-9a-f-]{36}\.png$`, AttachmentKey("u1", "../../etc/x.png", at))
}

func TestAttachmentKeysInSameMillisecondDiffer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://files.local")
	at := time.UnixMilli(1704067200000)

	first := AttachmentKey("u1", "a.pdf", at)
	second := AttachmentKey("u1", "b.pdf", at.Add(300*time.Microsecond))
	assert.NotEqual(t, first, second)

	_, err := store.Put(ctx, first, []byte("a"), "application/pdf")
	require.NoError(t, err)
	_, err = store.Put(ctx, second, []byte("b"), "application/pdf")
	require.NoError(t, err)
}

func TestAvatarKeysAreUnique(t *testing.T) {
	a := AvatarKey("u1", "me.jpg")
	b := AvatarKey("u1", "me.jpg")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^u1/[0-9a-f-]{36}\.jpg$`, a)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://files.local/")

	url, err := store.Put(ctx, "u1/1.png", []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://files.local/u1/1.png", url)

	body, ok := store.Object("u1/1.png")
	require.True(t, ok)
	assert.Equal(t, []byte("img"), body)

	_, err = store.Put(ctx, "u1/1.png", []byte("again"), "image/png")
	assert.Error(t, err)

	store.FailWith(errors.New("bucket unavailable"))
	_, err = store.Put(ctx, "u1/2.png", []byte("img"), "image/png")
	assert.EqualError(t, err, "bucket unavailable")
}
