// Package mocks provides centralized mock implementations for testing.
//
// Each mock has function fields for its interface methods plus default
// return values, and records calls so tests can assert on them. All mocks
// are safe for concurrent use, since the reminder batch calls its
// dependencies from several goroutines.
//
// Usage:
//
//	users := &mocks.MockUserStore{Users: []domain.User{alice, bob}}
//	sender := &mocks.MockSender{}
//
//	// run the code under test...
//
//	assert.Len(t, sender.Sent(), 2)
//
// TestifyMockUserStore is the testify/mock flavour for tests that prefer
// expectation-style setup.
package mocks
