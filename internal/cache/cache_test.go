package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты для кэша refresh-слотов:
// — поднимают реальный Redis через testcontainers-go (образ redis:7-alpine);
// — проверяют round-trip Get/Set/Del, промах по отсутствующему ключу,
//   истечение TTL и ошибку конструктора на неверном URL.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/cache -v -race -count=1

func startRedis(t *testing.T) (RefreshCache, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")
	url := fmt.Sprintf("redis://%s:%s/0", host, port.Port())

	rc, err := NewRedisCache(url, "")
	require.NoError(t, err)

	cleanup := func() {
		_ = rc.Close()
		_ = c.Terminate(context.Background())
	}
	return rc, cleanup
}

func TestIntegration_SetGetDel_RoundTrip(t *testing.T) {
	rc, cleanup := startRedis(t)
	defer cleanup()

	uid := uuid.New()

	// Промах до записи.
	_, ok, err := rc.Get(context.Background(), uid)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, rc.Set(context.Background(), uid, "refresh-jwt", time.Minute))

	v, ok, err := rc.Get(context.Background(), uid)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "refresh-jwt", v)

	// Перезапись слота новым значением (ротация).
	require.NoError(t, rc.Set(context.Background(), uid, "rotated-jwt", time.Minute))
	v, ok, err = rc.Get(context.Background(), uid)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "rotated-jwt", v)

	// Удаление (logout).
	require.NoError(t, rc.Del(context.Background(), uid))
	_, ok, err = rc.Get(context.Background(), uid)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIntegration_Set_TTLExpires(t *testing.T) {
	rc, cleanup := startRedis(t)
	defer cleanup()

	uid := uuid.New()
	require.NoError(t, rc.Set(context.Background(), uid, "short-lived", time.Second))

	time.Sleep(1500 * time.Millisecond)

	_, ok, err := rc.Get(context.Background(), uid)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIntegration_SlotsAreIsolatedPerUser(t *testing.T) {
	rc, cleanup := startRedis(t)
	defer cleanup()

	first := uuid.New()
	second := uuid.New()

	require.NoError(t, rc.Set(context.Background(), first, "token-a", time.Minute))
	require.NoError(t, rc.Set(context.Background(), second, "token-b", time.Minute))

	v, ok, err := rc.Get(context.Background(), first)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "token-a", v)

	require.NoError(t, rc.Del(context.Background(), first))

	// Удаление слота одного аккаунта не трогает другой.
	v, ok, err = rc.Get(context.Background(), second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "token-b", v)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisCache("not-a-url", "")
	require.Error(t, err)
}
