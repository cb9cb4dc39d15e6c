package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/pkg/config"
)

func TestApplyPoolConfig(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://u:p@127.0.0.1:5432/ledger?sslmode=disable")
	require.NoError(t, err)

	applyPoolConfig(pc, config.DBConfig{MaxConns: 1, LockTimeoutMS: 2500})

	assert.Equal(t, int32(1), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, "2500", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.Equal(t, "stockledger-api", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestApplyPoolConfig_Defaults(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://u:p@127.0.0.1:5432/ledger")
	require.NoError(t, err)

	applyPoolConfig(pc, config.DBConfig{})

	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok)
}

func TestDSNFor_IPLiteral(t *testing.T) {
	dsn := dsnFor(config.DBConfig{Host: "10.0.0.5", Port: 5433, User: "u", Password: "p", DBName: "ledger", SSLMode: "disable"})
	assert.Equal(t, "postgres://u:p@10.0.0.5:5433/ledger?sslmode=disable", dsn)

	assert.Equal(t, "postgres://u:p@10.0.0.5:5432/db", withIPv4Host("postgres://u:p@10.0.0.5/db"))
}
