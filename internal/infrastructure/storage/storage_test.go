package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/pkg/config"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.DBConfig{Driver: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "x", "p.db")}, nil)
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, DriverSQLite, st.Driver)
	require.NoError(t, st.Ping(ctx))

	u := &entity.User{Username: "ana", PasswordHash: "x", IsActive: true}
	require.NoError(t, st.Users.Create(ctx, u))
	assert.NotZero(t, u.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DBConfig{Driver: "mysql"}, nil)
	assert.ErrorContains(t, err, "mysql")
}
