// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/research-marketplace/account-deletion-service/utils"
	"github.com/research-marketplace/account-deletion-service/view"
	log "github.com/sirupsen/logrus"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

type MinioStorageService interface {
	// ListUserFiles returns at most one page of object keys under prefix.
	ListUserFiles(ctx context.Context, prefix string) ([]string, error)
	// RemoveFiles deletes keys in one batch and returns how many were removed.
	RemoveFiles(ctx context.Context, keys []string) (int, error)
}

func NewMinioStorageService(creds *view.MinioStorageCreds, pageSize int) (MinioStorageService, error) {
	if !creds.IsActive {
		log.Warn("Object storage is disabled, user files will not be cleaned")
		return disabledStorageService{}, nil
	}

	endpoint, secure := splitEndpoint(creds.Endpoint)
	tlsConfig, err := utils.NewStorageTLSConfig(creds.Crt, creds.Insecure)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(creds.AccessKeyId, creds.SecretAccessKey, ""),
		Secure:    secure,
		Transport: transport,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create minio client")
	}
	log.Infof("Object storage client created for %s, bucket %s", endpoint, creds.BucketName)
	return &minioStorageServiceImpl{client: client, bucketName: creds.BucketName, pageSize: pageSize}, nil
}

type minioStorageServiceImpl struct {
	client     *minio.Client
	bucketName string
	pageSize   int
}

func (m minioStorageServiceImpl) ListUserFiles(ctx context.Context, prefix string) ([]string, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make([]string, 0)
	objects := m.client.ListObjects(listCtx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   m.pageSize,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, errors.Wrapf(object.Err, "failed to list objects with prefix %s", prefix)
		}
		keys = append(keys, object.Key)
		if len(keys) >= m.pageSize {
			break
		}
	}
	return keys, nil
}

func (m minioStorageServiceImpl) RemoveFiles(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := make([]string, 0)
	var firstErr error
	for removeErr := range m.client.RemoveObjects(ctx, m.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		failed = append(failed, removeErr.ObjectName)
		if firstErr == nil {
			firstErr = removeErr.Err
		}
	}
	removed := len(keys) - len(failed)
	if len(failed) > 0 {
		if firstErr == nil {
			firstErr = errors.New("object removal failed")
		}
		return removed, errors.Wrapf(firstErr, "failed to remove %d of %d objects (%s)", len(failed), len(keys), strings.Join(failed, ", "))
	}
	log.Debugf("Removed %d objects from bucket %s", removed, m.bucketName)
	return removed, nil
}

func splitEndpoint(endpoint string) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	default:
		return endpoint, true
	}
}

type disabledStorageService struct{}

func (disabledStorageService) ListUserFiles(ctx context.Context, prefix string) ([]string, error) {
	return nil, ErrStorageDisabled
}

func (disabledStorageService) RemoveFiles(ctx context.Context, keys []string) (int, error) {
	return 0, ErrStorageDisabled
}
