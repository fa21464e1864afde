// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner defines the interface for presigning S3 requests
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Config selects the bucket and endpoint of an S3Store
type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint, e.g. http://localhost:9000 for minio
	Endpoint string
	// LinkBase prefixes folder links; defaults to s3://<bucket>
	LinkBase string
}

// S3Store keeps each claim folder as a key prefix with a zero-byte marker
// object named "<folder>/"
type S3Store struct {
	client   S3API
	presign  Presigner
	bucket   string
	linkBase string
}

// NewS3Store loads the default AWS configuration and builds the client
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, s3.NewPresignClient(client), cfg), nil
}

func NewS3StoreWithClient(client S3API, presign Presigner, cfg S3Config) *S3Store {
	linkBase := cfg.LinkBase
	if linkBase == "" {
		linkBase = "s3://" + cfg.Bucket
	}
	return &S3Store{
		client:   client,
		presign:  presign,
		bucket:   cfg.Bucket,
		linkBase: strings.TrimRight(linkBase, "/"),
	}
}

func (s *S3Store) folder(name string) Folder {
	return Folder{ID: name, Name: name, Link: s.linkBase + "/" + name + "/"}
}

func (s *S3Store) FindFolder(ctx context.Context, name string) (Folder, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name + "/"),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return Folder{}, ErrFolderNotFound
		}
		return Folder{}, fmt.Errorf("failed to look up folder %s: %w", name, err)
	}
	return s.folder(name), nil
}

func (s *S3Store) EnsureFolder(ctx context.Context, name string) (Folder, error) {
	f, err := s.FindFolder(ctx, name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrFolderNotFound) {
		return Folder{}, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name + "/"),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return Folder{}, fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	return s.folder(name), nil
}

func (s *S3Store) Upload(ctx context.Context, folder Folder, f File) (Object, error) {
	key := ObjectKey(folder, f.Name)
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(f.Body))),
		Metadata:      map[string]string{"original-name": metadataValue(SanitizeName(f.Name))},
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload %s: %w", f.Name, err)
	}

	return Object{Key: key, Name: f.Name, ContentType: contentType, Size: int64(len(f.Body))}, nil
}

// metadataValue RFC 2047-encodes non-ASCII text; x-amz-meta-* headers are
// signed as US-ASCII
func metadataValue(v string) string {
	return mime.QEncoding.Encode("utf-8", v)
}

func (s *S3Store) DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
