package db

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// RunMigrations ensures the visit sink table exists. This keeps the
// service self-contained without an external migration step. The
// enrichment columns (geo, device) stay nullable so enriched ingress
// payloads remain representable even though no parser ships here.
func RunMigrations(ctx context.Context, conn clickhouse.Conn) error {
	err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS page_visits
(
	id              Int64,
	kind            String,
	page_url        String,
	visitor_id      String,
	session_id      String,
	ts              DateTime64(3, 'UTC'),
	time_on_page    Int32,
	referrer        String DEFAULT '',
	user_agent      String DEFAULT '',
	ip_address      String DEFAULT '',
	event_name      String DEFAULT '',
	event_data      String DEFAULT '{}',
	country         Nullable(String),
	region          Nullable(String),
	city            Nullable(String),
	latitude        Nullable(Float64),
	longitude       Nullable(Float64),
	device_type     Nullable(String),
	browser         Nullable(String),
	operating_system Nullable(String),
	ingested_at     DateTime DEFAULT now()
)
ENGINE = MergeTree
PARTITION BY toYYYYMMDD(ts)
ORDER BY (ts, page_url, visitor_id)
SETTINGS index_granularity = 8192;
`)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
