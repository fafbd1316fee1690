package filestorage

import (
	"bytes"
	"context"
	"expense-tools-backend/config"
	"expense-tools-backend/models"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

type Provider interface {
	UploadReceipt(ctx context.Context, key string, file models.File) error
	GetReceipt(ctx context.Context, key string) ([]byte, error)
}

var Instance Provider

type impl struct {
	s3client   *minio.Client
	bucketName string
}

func (i impl) UploadReceipt(ctx context.Context, key string, file models.File) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := i.s3client.PutObject(ctx, i.bucketName, key, bytes.NewReader(file.Body), int64(len(file.Body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, "ошибка загрузки чека в хранилище")
	}
	return nil
}

func (i impl) GetReceipt(ctx context.Context, key string) ([]byte, error) {
	obj, err := i.s3client.GetObject(ctx, i.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения чека из хранилища")
	}
	defer obj.Close()
	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка чтения чека из хранилища")
	}
	return body, nil
}

func NewInstance(s3client *minio.Client) {
	Instance = &impl{
		s3client:   s3client,
		bucketName: config.Conf.S3.BucketName,
	}
}
