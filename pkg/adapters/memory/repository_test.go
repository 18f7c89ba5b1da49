package memory_test

import (
	"testing"

	"github.com/streetwriters/notesnook-sub014/pkg/adapters/memory"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/core/coretest"
)

func TestRepository(t *testing.T) {
	coretest.RepositorySuite(t, func(t *testing.T) core.Repository {
		return memory.NewRepository()
	})
}
