// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// memRegistry is a Registry without Merge, exercising Record's fallback.
type memRegistry struct {
	labels []string
	saves  int
}

func (m *memRegistry) Load(context.Context) ([]string, error) {
	return append([]string{}, m.labels...), nil
}

func (m *memRegistry) Save(_ context.Context, labels []string) error {
	m.labels = labels
	m.saves++
	return nil
}

func TestLabels(t *testing.T) {
	got := Labels([]string{"banking", "  real   estate ", "Banking", "", "aerospace & defense"})
	assert.Equal(t, []string{"Aerospace & Defense", "Banking", "Real Estate"}, got)
	assert.Equal(t, []string{}, Labels(nil))
}

func TestRecordFallback(t *testing.T) {
	m := &memRegistry{labels: []string{"Retail"}}

	got, err := Record(context.Background(), m, []string{"energy", "retail"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy", "Retail"}, got)
	assert.Equal(t, 1, m.saves)
}

func TestFileRegistry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config", "domains.json")
	r := NewFileRegistry(path, time.Second)

	labels, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, labels)

	got, err := Record(ctx, r, []string{"banking", "Retail"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banking", "Retail"}, got)

	got, err = Record(ctx, r, []string{"Energy", "BANKING"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banking", "Energy", "Retail"}, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"domains": ["Banking", "Energy", "Retail"]}`, string(data))

	require.NoError(t, r.Save(ctx, []string{"travel"}))
	labels, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel"}, labels)

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file left behind")
}

func TestFileRegistryLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	require.NoError(t, os.WriteFile(path+".lock", []byte("1\n"), 0o644))

	r := NewFileRegistry(path, 50*time.Millisecond)
	_, err := r.Merge(context.Background(), []string{"Retail"})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestFileRegistryLockHonoursContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	require.NoError(t, os.WriteFile(path+".lock", []byte("1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewFileRegistry(path, time.Minute)
	err := r.Save(ctx, []string{"Retail"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileRegistryConcurrentMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	r := NewFileRegistry(path, 10*time.Second)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Merge(context.Background(), []string{fmt.Sprintf("Label %d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	labels, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, labels, 8)
}

func TestFileRegistryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := NewFileRegistry(path, 0).Load(context.Background())
	assert.Error(t, err)
}

func TestRedisRegistry(t *testing.T) {
	addr := os.Getenv("CVNORM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CVNORM_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	key := fmt.Sprintf("cvnorm:test:%d", time.Now().UnixNano())

	r, err := DialRedis(ctx, types.RegistryConfig{RedisAddr: addr, RedisKey: key})
	require.NoError(t, err)
	defer r.Close()
	defer r.client.Del(ctx, key)

	got, err := Record(ctx, r, []string{"banking", "Retail"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banking", "Retail"}, got)

	require.NoError(t, r.Save(ctx, []string{"energy"}))
	labels, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy"}, labels)
}

func TestDialRedisRequiresAddress(t *testing.T) {
	_, err := DialRedis(context.Background(), types.RegistryConfig{})
	assert.Error(t, err)
}
