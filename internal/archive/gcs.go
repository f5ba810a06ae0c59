package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const uploadTimeout = 2 * time.Minute

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// GCSArchiver keeps the raw statement files in a Cloud Storage bucket. It
// assumes Application Default Credentials are configured.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewGCSArchiver creates a storage client for bucket. Objects are written
// under prefix, which may be empty.
func NewGCSArchiver(ctx context.Context, bucket, prefix string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSArchiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

// Archive uploads data and returns its gs:// URI
func (a *GCSArchiver) Archive(ctx context.Context, companyID, fileName string, data []byte) (string, error) {
	objectName := ObjectName(a.prefix, companyID, uuid.NewString(), fileName, a.now())

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	if ct, ok := contentTypes[strings.ToLower(path.Ext(fileName))]; ok {
		w.ContentType = ct
	}
	w.Metadata = map[string]string{
		"company_id":    companyID,
		"original_name": fileName,
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s to GCS: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload of %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// Close releases the storage client
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// ObjectName lays archived files out as
// <prefix>/<company>/<yyyy>/<mm>/<id>-<file name>
func ObjectName(prefix, companyID, id, fileName string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "statement"
	}
	base = strings.ReplaceAll(base, " ", "_")

	return path.Join(
		strings.Trim(prefix, "/"),
		companyID,
		at.UTC().Format("2006"),
		at.UTC().Format("01"),
		id+"-"+base,
	)
}
