// Package archive writes a snapshot of the items table as Parquet and
// ships it to S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"

	"items-api/backend/internal/config"
	"items-api/backend/internal/items"
)

const contentType = "application/vnd.apache.parquet"

// Row is the Parquet schema. Parquet columns here are not nullable, so
// NULL text is written as "" with the matching has_* flag false.
type Row struct {
	ID             int64  `parquet:"id"`
	Name           string `parquet:"name"`
	HasName        bool   `parquet:"has_name"`
	Description    string `parquet:"description"`
	HasDescription bool   `parquet:"has_description"`
}

func toRow(it items.Item) Row {
	r := Row{ID: it.ID}
	if it.Name != nil {
		r.Name, r.HasName = *it.Name, true
	}
	if it.Description != nil {
		r.Description, r.HasDescription = *it.Description, true
	}
	return r
}

type Lister interface {
	List(ctx context.Context) ([]items.Item, error)
}

// Encode writes all items to w as a single Parquet file.
func Encode(w io.Writer, all []items.Item) error {
	rows := make([]Row, 0, len(all))
	for _, it := range all {
		rows = append(rows, toRow(it))
	}
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// Snapshot lists every item from src and returns the encoded file and
// the row count.
func Snapshot(ctx context.Context, src Lister) ([]byte, int, error) {
	all, err := src.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, all); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(all), nil
}

// DefaultKey is items/YYYY/MM/DD.parquet for the UTC date of t.
func DefaultKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("items/%04d/%02d/%02d.parquet", t.Year(), t.Month(), t.Day())
}

// Uploader is implemented by *s3.Client.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client returns nil when cfg is not enabled.
func NewS3Client(cfg config.S3Config) *s3.Client {
	if !cfg.Enabled() {
		return nil
	}
	endpoint := cfg.Endpoint
	return s3.New(s3.Options{
		BaseEndpoint: &endpoint,
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: true,
	})
}

func Upload(ctx context.Context, up Uploader, bucket, key string, data []byte, rows int) error {
	ct := contentType
	_, err := up.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &ct,
		Metadata: map[string]string{
			"rows": strconv.Itoa(rows),
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	return nil
}
