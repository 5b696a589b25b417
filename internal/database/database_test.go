package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolOptions_WithDefaults(t *testing.T) {
	opts := PoolOptions{}.withDefaults()

	assert.EqualValues(t, DefaultMaxConnections, opts.MaxConns)
	assert.EqualValues(t, DefaultMinConnections, opts.MinConns)
	assert.Equal(t, DefaultMaxIdleTime, opts.MaxIdleTime)
	assert.Equal(t, DefaultMaxLifetime, opts.MaxLifetime)
}

func TestPoolOptions_WithDefaults_KeepsExplicitValues(t *testing.T) {
	opts := PoolOptions{MaxConns: 3, MaxIdleTime: time.Minute}.withDefaults()

	assert.EqualValues(t, 3, opts.MaxConns)
	assert.Equal(t, time.Minute, opts.MaxIdleTime)
	assert.EqualValues(t, DefaultMinConnections, opts.MinConns)
	assert.Equal(t, DefaultMaxLifetime, opts.MaxLifetime)
}

func TestNewPool_BadConnString(t *testing.T) {
	_, err := NewPool(context.Background(), "://not-a-dsn", PoolOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database connection string")
}
