package memory_test

import (
	"testing"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/store/content/memory"
	contenttesting "github.com/freelawproject/wiki/pkg/store/content/testing"
)

func TestMemoryStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			return memory.NewMemoryStore()
		},
	}

	suite.Run(t)
}
