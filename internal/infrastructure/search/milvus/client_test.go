package milvus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
)

type mockMilvusClient struct {
	client.Client

	checkHealthFn func(ctx context.Context) (*entity.MilvusState, error)
	closeCalls    atomic.Int32
}

func (m *mockMilvusClient) CheckHealth(ctx context.Context) (*entity.MilvusState, error) {
	if m.checkHealthFn != nil {
		return m.checkHealthFn(ctx)
	}
	return &entity.MilvusState{}, nil
}

func (m *mockMilvusClient) Close() error {
	m.closeCalls.Add(1)
	return nil
}

// swapFactory replaces the SDK constructor for the duration of a test.
func swapFactory(t *testing.T, f clientFactory) {
	t.Helper()
	prev := newMilvusClient
	newMilvusClient = f
	t.Cleanup(func() { newMilvusClient = prev })
}

// newIndexTestClient builds a Client wired to a mock without dialing.
func newIndexTestClient(mc client.Client) *Client {
	c := &Client{
		milvusClient: mc,
		config:       ClientConfig{Address: "localhost:19530", DBName: "default"},
		logger:       logging.NewNopLogger(),
		cancel:       func() {},
	}
	c.healthy.Store(true)
	return c
}

func TestNewClient_EmptyAddress(t *testing.T) {
	_, err := NewClient(ClientConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewClient_ConnectsAndReportsHealthy(t *testing.T) {
	mock := &mockMilvusClient{}
	swapFactory(t, func(ctx context.Context, conf client.Config) (client.Client, error) {
		assert.Equal(t, "localhost:19530", conf.Address)
		assert.Equal(t, "gapintel", conf.DBName)
		return mock, nil
	})

	c, err := NewClient(ClientConfig{
		Address:             "localhost:19530",
		DBName:              "gapintel",
		HealthCheckInterval: time.Hour,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.IsHealthy())
	assert.Same(t, client.Client(mock), c.Raw())
}

func TestNewClient_DialFailure(t *testing.T) {
	swapFactory(t, func(ctx context.Context, conf client.Config) (client.Client, error) {
		return nil, assert.AnError
	})

	_, err := NewClient(ClientConfig{Address: "localhost:19530"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewClient_UnhealthyOnConnect(t *testing.T) {
	mock := &mockMilvusClient{
		checkHealthFn: func(ctx context.Context) (*entity.MilvusState, error) {
			return nil, assert.AnError
		},
	}
	swapFactory(t, func(ctx context.Context, conf client.Config) (client.Client, error) {
		return mock, nil
	})

	_, err := NewClient(ClientConfig{Address: "localhost:19530"}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, int32(1), mock.closeCalls.Load())
}

func TestCheckHealth_MarksUnhealthy(t *testing.T) {
	mock := &mockMilvusClient{
		checkHealthFn: func(ctx context.Context) (*entity.MilvusState, error) {
			return nil, assert.AnError
		},
	}
	c := newIndexTestClient(mock)

	err := c.CheckHealth(context.Background())
	assert.ErrorIs(t, err, ErrUnhealthy)
	assert.False(t, c.IsHealthy())

	mock.checkHealthFn = nil
	require.NoError(t, c.CheckHealth(context.Background()))
	assert.True(t, c.IsHealthy())
}

func TestClientClose_ClosesUnderlying(t *testing.T) {
	mock := &mockMilvusClient{}
	c := newIndexTestClient(mock)

	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), mock.closeCalls.Load())
}

func TestClientFromConfig(t *testing.T) {
	cc := ClientFromConfig(config.MilvusConfig{
		Addr:   "milvus.internal:19530",
		DBName: "gapintel",
	})
	assert.Equal(t, "milvus.internal:19530", cc.Address)
	assert.Equal(t, "gapintel", cc.DBName)
}
