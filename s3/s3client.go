package s3client

import (
	"context"
	"expense-tools-backend/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

var Client *minio.Client

func NewClient() (*minio.Client, error) {
	minioClient, err := minio.New(config.Conf.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Conf.S3.AccessKeyID, config.Conf.S3.SecretAccessKey, ""),
		Secure: *config.Conf.S3.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания клиента S3")
	}
	return minioClient, nil
}

// MakeBucket создает бакет для чеков, если его еще нет
func MakeBucket(ctx context.Context, minioClient *minio.Client, bucketName string) error {
	location := "us-east-1"
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return errors.Wrap(err, "ошибка проверки бакета")
	}
	if exists {
		return nil
	}

	err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
	if err != nil {
		return errors.Wrap(err, "ошибка создания бакета")
	}
	return nil
}
