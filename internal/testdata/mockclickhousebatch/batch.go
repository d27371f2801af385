// Package mockclickhousebatch is a testify mock over the driver.Batch
// interface for repository tests.
package mockclickhousebatch

import (
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/mock"
)

type Batch struct {
	mock.Mock
}

var _ driver.Batch = &Batch{}

// Append forwards the row values directly so expectations can match
// each column positionally.
func (b *Batch) Append(args ...any) error {
	return b.Called(args...).Error(0)
}

func (b *Batch) AppendStruct(v any) error {
	return b.Called(v).Error(0)
}

func (b *Batch) Column(idx int) driver.BatchColumn {
	ret := b.Called(idx)
	col, _ := ret.Get(0).(driver.BatchColumn)
	return col
}

func (b *Batch) Abort() error { return b.Called().Error(0) }

func (b *Batch) Flush() error { return b.Called().Error(0) }

func (b *Batch) Send() error { return b.Called().Error(0) }

func (b *Batch) IsSent() bool { return b.Called().Bool(0) }

type BatchColumn struct {
	mock.Mock
}

var _ driver.BatchColumn = &BatchColumn{}

func (c *BatchColumn) Append(v any) error { return c.Called(v).Error(0) }

func (c *BatchColumn) AppendRow(v any) error { return c.Called(v).Error(0) }
