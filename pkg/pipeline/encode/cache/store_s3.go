/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/netobserv/asn-ranges/pkg/api"
	log "github.com/sirupsen/logrus"
)

// S3Store keeps records as objects of an S3 compatible bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewS3Store(params api.CacheS3) (*S3Store, error) {
	log.Debugf("entering NewS3Store, endpoint = %s, bucket = %s", params.Endpoint, params.Bucket)
	client, err := minio.New(params.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(params.AccessKeyId, params.SecretAccessKey, ""),
		Secure: params.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to s3: %w", err)
	}
	return &S3Store{
		client: client,
		bucket: params.Bucket,
		prefix: params.Prefix,
	}, nil
}

func (s *S3Store) objectName(fingerprint string) string {
	return path.Join(s.prefix, fingerprint+objectSuffix)
}

func (s *S3Store) Get(ctx context.Context, fingerprint string) (io.ReadCloser, error) {
	name := s.objectName(fingerprint)
	// GetObject is lazy, stat first to tell a missing object from a failure
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s/%s: %w", s.bucket, name, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.bucket, name, err)
	}
	return obj, nil
}

func (s *S3Store) Put(ctx context.Context, fingerprint string, data []byte) error {
	name := s.objectName(fingerprint)
	uploadInfo, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, name, err)
	}
	log.Debugf("uploadInfo = %v", uploadInfo)
	return nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
