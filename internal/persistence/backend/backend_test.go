package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dsharma2002/FitGenie-AI/internal/config"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/memory"
)

func TestOpenMemoryBackend(t *testing.T) {
	store, closeFn, err := Open(context.Background(), config.Config{StoreBackend: config.StoreMemory}, nil)
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &memory.Store{}, store)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), config.Config{StoreBackend: "cassandra"}, nil)
	require.ErrorContains(t, err, "cassandra")
}
