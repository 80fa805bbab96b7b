// Package reliability provides operational safety nets around the data
// stores.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/database"
	"github.com/aristath/conviction/pkg/logger"
)

// BackupConfig holds the object-store destination.
type BackupConfig struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional, for S3-compatible stores
	AccessKey string
	SecretKey string
	Retention int // Number of backups to keep
}

// BackupService archives the databases to an S3-compatible object store.
type BackupService struct {
	cfg       BackupConfig
	client    *s3.Client
	uploader  *manager.Uploader
	databases []*database.DB
	log       zerolog.Logger
}

// NewBackupService builds the S3 client and uploader.
func NewBackupService(ctx context.Context, cfg BackupConfig, databases []*database.DB, log zerolog.Logger) (*BackupService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object-store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &BackupService{
		cfg:       cfg,
		client:    client,
		uploader:  manager.NewUploader(client),
		databases: databases,
		log:       logger.Service(log, "backup"),
	}, nil
}

// Run checkpoints every database, archives the files, uploads the archive,
// and prunes backups beyond the retention count.
func (s *BackupService) Run(ctx context.Context) error {
	for _, db := range s.databases {
		if err := db.WALCheckpoint(); err != nil {
			return err
		}
	}

	archive, err := s.buildArchive()
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	key := fmt.Sprintf("backups/conviction_%s.tar.gz", time.Now().UTC().Format("20060102_150405"))
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}
	s.log.Info().Str("key", key).Msg("backup uploaded")

	if err := s.prune(ctx); err != nil {
		// Retention cleanup failing should not fail the backup itself.
		s.log.Warn().Err(err).Msg("backup pruning failed")
	}
	return nil
}

// buildArchive writes a tar.gz of the database files to a temp path.
func (s *BackupService) buildArchive() (string, error) {
	tmp, err := os.CreateTemp("", "conviction_backup_*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer tmp.Close()

	gz := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gz)

	for _, db := range s.databases {
		if err := addFile(tw, db.Path()); err != nil {
			tw.Close()
			gz.Close()
			os.Remove(tmp.Name())
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize compression: %w", err)
	}
	return tmp.Name(), nil
}

func addFile(tw *tar.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for backup: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	header := &tar.Header{
		Name:    filepath.Base(path),
		Mode:    0o644,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write archive header for %s: %w", path, err)
	}
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return nil
}

// prune deletes the oldest backups beyond the retention count.
func (s *BackupService) prune(ctx context.Context) error {
	if s.cfg.Retention <= 0 {
		return nil
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	var keys []string
	for _, obj := range out.Contents {
		if obj.Key != nil && strings.HasSuffix(*obj.Key, ".tar.gz") {
			keys = append(keys, *obj.Key)
		}
	}
	// Timestamped names sort chronologically.
	sort.Strings(keys)
	if len(keys) <= s.cfg.Retention {
		return nil
	}

	for _, key := range keys[:len(keys)-s.cfg.Retention] {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("failed to delete old backup %s: %w", key, err)
		}
		s.log.Debug().Str("key", key).Msg("old backup pruned")
	}
	return nil
}
