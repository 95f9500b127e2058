package minio

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-user-auth/internal/config"
)

// Интеграционные тесты для пакета minio:
// — поднимают реальный MinIO через testcontainers-go;
// — создают бакет для медиафайлов;
// — проверяют:
//    New: успешное подключение и ошибку при отсутствии бакета;
//    UploadFile: загрузку локального файла, собранный публичный URL,
//    удаление локальной копии на любом исходе.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

func startMinio(t *testing.T, createBucket bool) (*MediaStorage, func(), string) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	const (
		image        = "docker.io/minio/minio:latest"
		rootUser     = "root"
		rootPassword = "rootpass"
		bucket       = "media"
	)
	req := tc.ContainerRequest{
		Image: image,
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data", "--console-address", ":9001"},
		ExposedPorts: []string{"9000/tcp", "9001/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting minio container with image=%q", image)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")
	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	if createBucket {
		admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
			Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
			Secure: false,
		})
		require.NoError(t, err)
		err = admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"})
		require.NoError(t, err)
	}

	cfg := config.S3Config{
		Endpoint:      endpoint,
		RootUser:      rootUser,
		RootPassword:  rootPassword,
		Bucket:        bucket,
		PublicBaseURL: "http://cdn.local/media-bucket",
	}

	st, newErr := New(ctx, cfg)
	if !createBucket {
		require.Error(t, newErr)
		_ = c.Terminate(context.Background())
		return nil, func() {}, ""
	}
	require.NoError(t, newErr)

	cleanup := func() {
		_ = c.Terminate(context.Background())
	}
	return st, cleanup, endpoint
}

// writeTempFile — создает локальный файл с заданным расширением (имитация
// принятого multipart-файла).
func writeTempFile(t *testing.T, ext string, data []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "upload-*"+ext)
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	// Без предварительного создания бакета New должен вернуть ошибку.
	_, _, _ = startMinio(t, false)
}

func TestIntegration_UploadFile_OK_RemovesLocalCopy(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	local := writeTempFile(t, ".png", []byte("png-bytes"))

	url, err := st.UploadFile(context.Background(), local)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn.local/media-bucket/media/"), url)
	require.Equal(t, ".png", filepath.Ext(url))

	// Локальная копия удалена после успешной загрузки.
	_, statErr := os.Stat(local)
	require.True(t, os.IsNotExist(statErr))

	// Объект действительно лежит в бакете под ключом из URL.
	key := strings.TrimPrefix(url, "http://cdn.local/media-bucket/")
	info, err := st.client.StatObject(context.Background(), st.bucket, key, mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(len("png-bytes")), info.Size)
	require.Equal(t, "image/png", info.ContentType)
}

func TestIntegration_UploadFile_FailureRemovesLocalCopy(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	local := writeTempFile(t, ".png", []byte("png-bytes"))

	// Отменённый контекст валит загрузку, но файл всё равно удаляется.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.UploadFile(ctx, local)
	require.Error(t, err)

	_, statErr := os.Stat(local)
	require.True(t, os.IsNotExist(statErr))
}

func TestIntegration_UploadFile_EmptyPath(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	_, err := st.UploadFile(context.Background(), "")
	require.Error(t, err)
}

func TestIntegration_UploadFile_MissingLocalFile(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	_, err := st.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestIntegration_UploadFile_PublicBaseFallback(t *testing.T) {
	st, cleanup, endpoint := startMinio(t, true)
	defer cleanup()
	_ = st

	// Без public_base_url ссылка собирается из endpoint и бакета.
	cfg := config.S3Config{
		Endpoint:     endpoint,
		RootUser:     "root",
		RootPassword: "rootpass",
		Bucket:       "media",
	}
	s2, err := New(context.Background(), cfg)
	require.NoError(t, err)

	local := writeTempFile(t, ".jpg", []byte("jpg-bytes"))
	url, err := s2.UploadFile(context.Background(), local)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, endpoint+"/media/media/"), url)

	// Ссылка доступна напрямую (анонимного доступа нет — достаточно кода ответа от сервера).
	resp, err := http.Get(url)
	require.NoError(t, err)
	_ = resp.Body.Close()
}
