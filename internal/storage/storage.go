package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	customError "github.com/cashewph/lending-platform/pkg/errors"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-_ .]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeName strips characters unsafe for object keys and collapses
// whitespace runs to single dashes.
func SanitizeName(name string) string {
	clean := unsafeChars.ReplaceAllString(strings.TrimSpace(name), "")
	return spaceRuns.ReplaceAllString(clean, "-")
}

// OwnsPath reports whether an object path sits under the user's prefix.
func OwnsPath(userID uuid.UUID, path string) bool {
	return strings.HasPrefix(path, userID.String()+"/")
}

// DiskStore is a disk-backed document store. Objects live under
// {root}/{userID}/{timestamp}__{sanitizedName}; retrieval outside the
// listing API goes through HMAC-signed, time-limited URLs.
type DiskStore struct {
	root      string
	secret    []byte
	urlTTL    time.Duration
	publicURL string
	log       *logrus.Logger
}

func NewDiskStore(root, secret, publicURL string, urlTTL time.Duration, log *logrus.Logger) *DiskStore {
	return &DiskStore{
		root:      root,
		secret:    []byte(secret),
		urlTTL:    urlTTL,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// Upload stores a new object for the user. Existing objects are never
// overwritten; the timestamp prefix keeps keys unique.
func (s *DiskStore) Upload(userID uuid.UUID, name string, r io.Reader) (*domain.Document, error) {
	sanitized := SanitizeName(name)
	if sanitized == "" {
		return nil, customError.NewBusinessError(customError.ErrCodeStorageError, "document name is empty after sanitizing", nil)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s__%s", now.Format(time.RFC3339), sanitized)
	dir := filepath.Join(s.root, userID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, customError.WrapStorageError(err)
	}

	fullPath := filepath.Join(dir, key)
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(fullPath)
		return nil, customError.WrapStorageError(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "key": key, "size": size}).Info("document stored")

	return &domain.Document{
		Name:      sanitized,
		Path:      userID.String() + "/" + key,
		Size:      size,
		CreatedAt: now,
	}, nil
}

// List returns the user's documents, newest first. The display name is
// recovered from the key's timestamp prefix.
func (s *DiskStore) List(userID uuid.UUID) ([]*domain.Document, error) {
	dir := filepath.Join(s.root, userID.String())
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []*domain.Document{}, nil
	}
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}

	docs := make([]*domain.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := entry.Name()
		createdAt := info.ModTime()
		displayName := name
		if idx := strings.Index(name, "__"); idx > 0 {
			if ts, err := time.Parse(time.RFC3339, name[:idx]); err == nil {
				createdAt = ts
			}
			displayName = name[idx+2:]
		}

		docs = append(docs, &domain.Document{
			Name:      displayName,
			Path:      userID.String() + "/" + name,
			Size:      info.Size(),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	return docs, nil
}

// SignURL produces a time-limited retrieval URL for an object path.
func (s *DiskStore) SignURL(path string) (*domain.SignedURLResponse, error) {
	if _, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(path))); err != nil {
		return nil, customError.NewBusinessError(customError.ErrCodeDocumentNotFound, "document not found", customError.ErrDocumentNotFound)
	}

	expires := time.Now().Add(s.urlTTL).Unix()
	sig := s.sign(path, expires)

	q := url.Values{}
	q.Set("path", path)
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", sig)

	return &domain.SignedURLResponse{
		URL:       fmt.Sprintf("%s/documents/signed?%s", s.publicURL, q.Encode()),
		ExpiresAt: time.Unix(expires, 0),
	}, nil
}

// Open verifies a signed request and returns the object for reading.
func (s *DiskStore) Open(path string, expires int64, signature string) (io.ReadCloser, error) {
	if time.Now().Unix() > expires {
		return nil, customError.NewBusinessError(customError.ErrCodeSignatureInvalid, "signed URL has expired", customError.ErrSignatureInvalid)
	}

	expected := s.sign(path, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, customError.NewBusinessError(customError.ErrCodeSignatureInvalid, "signature mismatch", customError.ErrSignatureInvalid)
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, customError.NewBusinessError(customError.ErrCodeSignatureInvalid, "invalid object path", customError.ErrSignatureInvalid)
	}

	f, err := os.Open(filepath.Join(s.root, clean))
	if os.IsNotExist(err) {
		return nil, customError.NewBusinessError(customError.ErrCodeDocumentNotFound, "document not found", customError.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}

	return f, nil
}

func (s *DiskStore) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
