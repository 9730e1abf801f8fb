// Package mocks provides mock implementations for testing vetdesk services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
// In-memory repositories live in the store subpackage and hand-written auth doubles in the auth subpackage.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	creds := mocks.NewMockCredentialRepository(ctrl)
//	creds.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for CredentialRepository interface from internal/core package.
// This creates MockCredentialRepository with methods for all CredentialRepository interface methods:
// Set, Get, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_repository_mock.go github.com/vetdesk/vetdesk/internal/core CredentialRepository
