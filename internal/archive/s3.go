// Package archive uploads timestamped snapshots of the collection to an
// S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/config"
)

const (
	snapshotPrefix = "startups-"
	snapshotLayout = "20060102T150405Z"
)

// API is the subset of the S3 client used for archiving.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Snapshot describes one archived object.
type Snapshot struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// S3Archiver writes collection snapshots under a key prefix.
type S3Archiver struct {
	api    API
	bucket string
	prefix string
	now    func() time.Time
}

// New builds an archiver from config. Static credentials are used when
// configured, otherwise the default AWS credential chain.
func New(ctx context.Context, cfg config.S3Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("archive: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "archive: load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithAPI builds an archiver over an existing client.
func NewWithAPI(api API, bucket, prefix string) *S3Archiver {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Archiver{
		api:    api,
		bucket: bucket,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Key returns the object key for a snapshot taken at t.
func (a *S3Archiver) Key(t time.Time) string {
	return a.prefix + snapshotPrefix + t.UTC().Format(snapshotLayout) + ".json"
}

// Archive uploads data as a new snapshot object.
func (a *S3Archiver) Archive(ctx context.Context, data []byte) error {
	key := a.Key(a.now())
	_, err := a.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return eris.Wrapf(err, "archive: put s3://%s/%s", a.bucket, key)
	}
	zap.L().Info("archive: snapshot uploaded",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// List returns the archived snapshots, newest first.
func (a *S3Archiver) List(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	var token *string
	for {
		page, err := a.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(a.prefix + snapshotPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "archive: list s3://%s/%s", a.bucket, a.prefix)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if path.Ext(key) != ".json" {
				continue
			}
			out = append(out, Snapshot{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}
	// Keys embed the UTC timestamp, so key order is time order.
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}
