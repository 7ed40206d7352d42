package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-agenda/internal/db"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
)

// audit-archive uploads one UTC day of audit rows to S3 as JSON lines.
// Defaults to yesterday so it can run from a daily cron.
func main() {
	dayFlag := flag.String("day", "", "UTC day to export (YYYY-MM-DD), default yesterday")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.AuditArchiveBucket == "" {
		logger.Error("AUDIT_ARCHIVE_BUCKET is not set")
		os.Exit(1)
	}

	day := time.Now().UTC().AddDate(0, 0, -1)
	if *dayFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dayFlag)
		if err != nil {
			logger.Error("invalid -day", "value", *dayFlag, "error", err)
			os.Exit(1)
		}
		day = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := dbpkg.NewDB(cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	archiver := audit.NewArchiver(
		audit.NewGormSource(db),
		audit.NewS3Putter(client, cfg.AuditArchiveBucket),
		logger,
	)

	key, rows, err := archiver.ArchiveDay(ctx, day)
	if err != nil {
		logger.Error("audit archive failed", "error", err)
		os.Exit(1)
	}

	logger.Info("audit archive done", "bucket", cfg.AuditArchiveBucket, "key", key, "rows", rows)
}

// newS3Client honours AWS_ENDPOINT_URL for LocalStack/MinIO.
func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}
