package memory_test

import (
	"testing"

	"github.com/warp/earnings-engine/store/memory"
	"github.com/warp/earnings-engine/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Backend {
		return memory.New()
	})
}
