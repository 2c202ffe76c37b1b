package memory_test

import (
	"testing"

	"github.com/fermata-io/purgatory/internal/adapters/memory"
	"github.com/fermata-io/purgatory/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.New()
	ports.RunBackendContract(t, store)
}
