package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ledgerRow struct {
	ID     uint `gorm:"primaryKey"`
	Status string
	Type   string
}

func (ledgerRow) TableName() string { return "wallet_transactions" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&ledgerRow{}))
	return db
}

func TestInstrumentDB_Disabled(t *testing.T) {
	db := openTestDB(t)
	metrics, err := InstrumentDB(db, DBInstrumentationConfig{}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)
}

func TestInstrumentDB_Metrics(t *testing.T) {
	db := openTestDB(t)
	reader, provider := newTestMeter(t)

	metrics, err := InstrumentDB(db, DBInstrumentationConfig{
		MetricsEnabled:  true,
		SlowQueryThresh: time.Nanosecond,
	}, provider.Meter("db.client"), nil)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	defer metrics.Stop()

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&ledgerRow{Status: "PENDING", Type: "TOPUP"}).Error)
	var rows []ledgerRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, db.WithContext(ctx).Exec("UPDATE wallet_transactions SET status = ?", "SUCCESS").Error)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumWhere(t, data["db_query_total"], AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), sumWhere(t, data["db_query_total"], AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), sumWhere(t, data["db_query_total"], AttrDBOperation.String("UPDATE")))
	assert.GreaterOrEqual(t, sumWhere(t, data["db_slow_query_total"], AttrDBTable.String("wallet_transactions")), int64(2))

	metrics.StartPoolStatsCollection(ctx)
	assert.Eventually(t, func() bool {
		_, ok := collect(t, reader)["db_pool_connections_max"]
		return ok
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), gaugeValue(t, collect(t, reader)["db_pool_connections_max"]))
}

func TestInstrumentDB_Tracing(t *testing.T) {
	db := openTestDB(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	// otelgorm resolves the global provider when the plugin is created
	restore := swapTracerProvider(tp)
	defer restore()

	_, err := InstrumentDB(db, DBInstrumentationConfig{TraceEnabled: true, DBSystem: "sqlite"}, nil, nil)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.WithContext(context.Background()).Table("wallet_transactions").Count(&n).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	attrs := make(map[string]string)
	for _, kv := range spans[len(spans)-1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "wallet_transactions", attrs["db.sql.table"])
}

func TestDetectOperationType(t *testing.T) {
	assert.Equal(t, "SELECT", detectOperationType("  select 1"))
	assert.Equal(t, "DELETE", detectOperationType("DELETE FROM carts"))
	assert.Equal(t, "OTHER", detectOperationType("VACUUM"))
}

func TestGormPendingPaymentsProvider(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&[]ledgerRow{
		{Status: "PENDING", Type: "TOPUP"},
		{Status: "PENDING", Type: "TOPUP"},
		{Status: "SUCCESS", Type: "TOPUP"},
		{Status: "PENDING", Type: "TRANSFER_OUT"},
	}).Error)

	p := NewGormPendingPaymentsProvider(db)
	n, err := p.CountPendingDeposits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = p.CountPendingOrders(context.Background())
	assert.Error(t, err, "orders table is not migrated in this fixture")
}
