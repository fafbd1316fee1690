package initializers

import (
	"context"
	"expense-tools-backend/config"
	filestorage "expense-tools-backend/lib/file-storage"
	s3client "expense-tools-backend/s3"

	log "github.com/sirupsen/logrus"
)

func InitS3() {
	minioClient, err := s3client.NewClient()
	if err != nil {
		log.WithError(err).Error("Ошибка инициализации клиента S3")
		return
	}

	err = s3client.MakeBucket(context.Background(), minioClient, config.Conf.S3.BucketName)
	if err != nil {
		log.WithError(err).Error("S3 соединение не удалось, бакет для чеков недоступен")
	}

	s3client.Client = minioClient
	filestorage.NewInstance(minioClient)
	log.Info("S3 клиент успешно инициализирован")
}
