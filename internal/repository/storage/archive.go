package storage

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
)

// DocumentArchive keeps a copy of every generated document
type DocumentArchive interface {
	Store(ctx context.Context, key string, data []byte, contentType, filename string) error
	GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectKey builds a unique, date-partitioned key: <documentType>/<YYYY>/<MM>/<uuid>-<filename>
func ObjectKey(documentType, filename string, at time.Time) string {
	return path.Join(documentType, at.Format("2006"), at.Format("01"), uuid.New().String()+"-"+filename)
}
