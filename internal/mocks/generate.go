// Package mocks provides mock implementations of the console's ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks let service tests assert exactly how often the remote API and the token store are hit.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockAuthAPI(ctrl)
//	api.EXPECT().SignIn(gomock.Any(), gomock.Any()).Times(0)
package mocks

// Generate mock for AuthAPI interface from internal/ports package.
// This creates MockAuthAPI with methods for all AuthAPI interface methods:
// SignIn, SignInWithToken, SignUp, ForgotPassword, ResetPassword, UnlockSession, Me, UpdateUser, UpdateStatus
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_api_mock.go github.com/target/dash-console/internal/ports AuthAPI

// Generate mock for TokenStore interface from internal/ports package.
// This creates MockTokenStore with methods for all TokenStore interface methods:
// Load, Save, Purge
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_store_mock.go github.com/target/dash-console/internal/ports TokenStore
