package sources

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/comfforts/logger"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
)

const CloudTextSource = "cloud-text-source"

const (
	ERR_CLOUD_TEXT_BUCKET_REQUIRED = "cloud text: bucket name is required"
	ERR_CLOUD_TEXT_OBJECT_REQUIRED = "cloud text: object path is required"
)

var (
	ErrCloudTextBucketRequired = errors.New(ERR_CLOUD_TEXT_BUCKET_REQUIRED)
	ErrCloudTextObjectRequired = errors.New(ERR_CLOUD_TEXT_OBJECT_REQUIRED)
)

// Cloud text source streams a bucket-stored delimited file through the
// delimited-text reader. Currently GCS only; credentials come from the
// environment.
type cloudTextSource struct {
	RowIterator
	client *storage.Client
	reader *storage.Reader
}

// Name of the source.
func (s *cloudTextSource) Name() string { return CloudTextSource }

// Close releases the object reader and the storage client.
func (s *cloudTextSource) Close(ctx context.Context) error {
	var errs []error
	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cloud text source config.
type CloudTextConfig struct {
	Bucket    string
	Object    string
	Delimiter rune // defaults to ','
}

// Name of the source.
func (c CloudTextConfig) Name() string { return CloudTextSource }

// BuildIterator opens the bucket object and validates its header line.
// An unreachable or unreadable object fails the whole batch.
func (c CloudTextConfig) BuildIterator(ctx context.Context) (RowIterator, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	if c.Bucket == "" {
		return nil, ErrCloudTextBucketRequired
	}
	if c.Object == "" {
		return nil, ErrCloudTextObjectRequired
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		l.Error("error creating cloud storage client", "error", err.Error())
		return nil, fmt.Errorf("cloud text: client: %w", err)
	}

	rdr, err := client.Bucket(c.Bucket).Object(c.Object).NewReader(ctx)
	if err != nil {
		if cerr := client.Close(); cerr != nil {
			l.Error("error closing cloud storage client", "error", cerr.Error())
		}
		return nil, &ingest.StructuralParseError{
			Stage: "object",
			Err:   fmt.Errorf("open %s/%s: %w", c.Bucket, c.Object, err),
		}
	}

	inner, err := DelimitedTextConfig{Reader: rdr, Delimiter: c.Delimiter}.BuildIterator(ctx)
	if err != nil {
		if cerr := rdr.Close(); cerr != nil {
			l.Error("error closing cloud object reader", "error", cerr.Error())
		}
		if cerr := client.Close(); cerr != nil {
			l.Error("error closing cloud storage client", "error", cerr.Error())
		}
		return nil, err
	}

	return &cloudTextSource{
		RowIterator: inner,
		client:      client,
		reader:      rdr,
	}, nil
}
