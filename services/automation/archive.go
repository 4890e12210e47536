// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Archiver uploads finished run directories to a GCS bucket.
type Archiver struct {
	storageClient *storage.Client
	bucket        string
}

// NewArchiver builds an archiver for the given bucket. With an empty
// saKeyPath the client uses application default credentials.
func NewArchiver(ctx context.Context, bucket, saKeyPath string) (*Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket not configured")
	}

	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s. Please ensure you have the correct key and it is accessible", saKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Archiver{
		storageClient: storageClient,
		bucket:        bucket,
	}, nil
}

// ArchiveRunDir uploads every file in the run directory under an object
// prefix named after the directory.
func (a *Archiver) ArchiveRunDir(ctx context.Context, runDir string) error {
	prefix := filepath.Base(runDir)
	return filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return a.uploadFile(ctx, path, filepath.Join(prefix, info.Name()))
		}
		return nil
	})
}

func (a *Archiver) uploadFile(ctx context.Context, localPath, objectPath string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open the local file: %s: %w", localPath, err)
	}
	defer localFile.Close()

	obj := a.storageClient.Bucket(a.bucket).Object(objectPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/octet-stream"
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, localFile); err != nil {
		return fmt.Errorf("failed to copy local file %s to GCS object %s: %w", localPath, objectPath, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", objectPath, err)
	}

	slog.Info("Archived run artifact", "bucket", a.bucket, "object", objectPath)
	return nil
}

// Close releases the underlying storage client.
func (a *Archiver) Close() error {
	return a.storageClient.Close()
}
