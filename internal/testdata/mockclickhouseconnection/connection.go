// Package mockclickhouseconnection is a testify mock over the
// clickhouse.Conn interface for repository tests.
package mockclickhouseconnection

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/mock"
)

type Connection struct {
	mock.Mock
}

var _ clickhouse.Conn = &Connection{}

// Exec flattens the query arguments into the call so expectations can
// match them positionally.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) error {
	all := append([]any{ctx, query}, args...)
	return c.Called(all...).Error(0)
}

func (c *Connection) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	ret := c.Called(ctx, query, args)
	rows, _ := ret.Get(0).(driver.Rows)
	return rows, ret.Error(1)
}

func (c *Connection) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	ret := c.Called(ctx, query, args)
	row, _ := ret.Get(0).(driver.Row)
	return row
}

func (c *Connection) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	ret := c.Called(ctx, query)
	batch, _ := ret.Get(0).(driver.Batch)
	return batch, ret.Error(1)
}

func (c *Connection) Select(ctx context.Context, dest any, query string, args ...any) error {
	return c.Called(ctx, dest, query, args).Error(0)
}

func (c *Connection) AsyncInsert(ctx context.Context, query string, wait bool) error {
	return c.Called(ctx, query, wait).Error(0)
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.Called(ctx).Error(0)
}

func (c *Connection) Close() error {
	return c.Called().Error(0)
}

func (c *Connection) Stats() driver.Stats {
	ret := c.Called()
	stats, _ := ret.Get(0).(driver.Stats)
	return stats
}

func (c *Connection) Contributors() []string {
	ret := c.Called()
	names, _ := ret.Get(0).([]string)
	return names
}

func (c *Connection) ServerVersion() (*driver.ServerVersion, error) {
	ret := c.Called()
	version, _ := ret.Get(0).(*driver.ServerVersion)
	return version, ret.Error(1)
}
