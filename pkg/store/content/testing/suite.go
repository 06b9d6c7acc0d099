package testing

import (
	"context"
	"testing"

	"github.com/freelawproject/wiki/pkg/content"
)

// StoreTestSuite is a comprehensive test suite for Store implementations.
// It tests the interface contract, not implementation details, making it
// reusable across different implementations (memory, badger, etc.).
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh Store instance
	// for each test. This ensures test isolation.
	NewStore func() content.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Tree", suite.RunTreeTests)
	test.Run("Page", suite.RunPageTests)
	test.Run("Redirect", suite.RunRedirectTests)
	test.Run("Revision", suite.RunRevisionTests)
	test.Run("Grants", suite.RunGrantsTests)
	test.Run("Accounts", suite.RunAccountTests)
	test.Run("Views", suite.RunViewTests)
	test.Run("Links", suite.RunLinkTests)
	test.Run("Healthcheck", suite.RunHealthcheckTests)
}

// RunHealthcheckTests executes the healthcheck tests.
func (suite *StoreTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Operational", suite.testHealthcheckOperational)
}

func (suite *StoreTestSuite) testHealthcheckOperational(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	if err := store.Healthcheck(context.Background()); err != nil {
		t.Fatalf("healthcheck on a fresh store: %v", err)
	}
}
