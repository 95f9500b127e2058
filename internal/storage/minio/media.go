package minio

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
)

// UploadFile загружает локальный файл в бакет и возвращает публичный URL.
//
// Локальный временный файл удаляется на любом исходе — и при успехе,
// и при ошибке загрузки: незачем копить хвосты multipart-приёма на диске.
// Ключ объекта: media/<uuid><ext>.
func (s *MediaStorage) UploadFile(ctx context.Context, localPath string) (string, error) {
	const op = "storage/minio/UploadFile"

	if localPath == "" {
		return "", fmt.Errorf("%s: empty local path", op)
	}

	defer func() {
		_ = os.Remove(localPath)
	}()

	ext := filepath.Ext(localPath)
	key := path.Join("media", uuid.NewString()+ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.publicURL + "/" + key, nil
}
