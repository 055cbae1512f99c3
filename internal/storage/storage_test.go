package storage

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewDiskStore(t.TempDir(), "test-signing-secret", "http://localhost:8080", time.Minute, logger)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "payslip.pdf", SanitizeName("payslip.pdf"))
	assert.Equal(t, "my-payslip-2026.pdf", SanitizeName("my payslip 2026.pdf"))
	assert.Equal(t, "report.pdf", SanitizeName("re/port$#.pdf"))
	assert.Equal(t, "a-b", SanitizeName("  a   b  "))
}

func TestUploadAndList(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	doc, err := store.Upload(userID, "pay slip.pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "pay-slip.pdf", doc.Name)
	assert.Equal(t, int64(5), doc.Size)
	assert.True(t, strings.HasPrefix(doc.Path, userID.String()+"/"))

	docs, err := store.List(userID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "pay-slip.pdf", docs[0].Name)

	// Another user sees nothing.
	other, err := store.List(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSignAndOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	doc, err := store.Upload(userID, "id.png", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	signed, err := store.SignURL(doc.Path)
	require.NoError(t, err)
	assert.Contains(t, signed.URL, "signature=")

	// Pull the query parameters back out and open with them.
	parts := strings.SplitN(signed.URL, "?", 2)
	require.Len(t, parts, 2)
	params := map[string]string{}
	for _, kv := range strings.Split(parts[1], "&") {
		pair := strings.SplitN(kv, "=", 2)
		params[pair[0]] = pair[1]
	}

	expires := signed.ExpiresAt.Unix()
	f, err := store.Open(doc.Path, expires, params["signature"])
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}

func TestOpen_RejectsTamperedSignature(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	doc, err := store.Upload(userID, "doc.pdf", strings.NewReader("secret"))
	require.NoError(t, err)

	expires := time.Now().Add(time.Minute).Unix()
	_, err = store.Open(doc.Path, expires, "deadbeef")
	assert.Error(t, err)
}

func TestOpen_RejectsExpired(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	doc, err := store.Upload(userID, "doc.pdf", strings.NewReader("secret"))
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute).Unix()
	_, err = store.Open(doc.Path, expired, "anything")
	assert.Error(t, err)
}

func TestSignURL_UnknownPath(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SignURL(uuid.New().String() + "/nope.pdf")
	assert.Error(t, err)
}

func TestOwnsPath(t *testing.T) {
	userID := uuid.New()
	assert.True(t, OwnsPath(userID, userID.String()+"/doc.pdf"))
	assert.False(t, OwnsPath(userID, uuid.New().String()+"/doc.pdf"))
	assert.False(t, OwnsPath(userID, "doc.pdf"))
}
