package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

// ObjectConfig configures the object-storage archiver.
type ObjectConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ObjectArchiver stores completed interviews as objects in an S3-compatible
// bucket, for deployments where local disk is ephemeral.
type ObjectArchiver struct {
	client   *minio.Client
	bucket   string
	region   string
	log      *logging.Logger
	initOnce sync.Once
	initErr  error
}

// NewObjectArchiver validates the config and builds the client. The bucket
// is created lazily on first write.
func NewObjectArchiver(cfg ObjectConfig, log *logging.Logger) (*ObjectArchiver, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("object storage access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("object storage bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}

	return &ObjectArchiver{
		client: client,
		bucket: bucket,
		region: region,
		log:    log.Sub("archive"),
	}, nil
}

func (a *ObjectArchiver) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

func (a *ObjectArchiver) Archive(ctx context.Context, rec interview.Record) (string, error) {
	id := rec.ArchiveID
	if id == "" {
		id = NewArchiveID(rec.ArchivedAt)
		rec.ArchiveID = id
	}

	if err := a.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	blob, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding record %s: %w", id, err)
	}

	key := "interviews/" + id + ".json"
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("writing record %s: %w", id, err)
	}

	a.log.Info().Str("session", rec.SessionID).Str("archiveId", id).Msg("interview archived")
	return id, nil
}
