// Package shared holds helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage captures slog output so tests can assert on the
// structured logs a service or middleware emits:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewSPCService(0, nil, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "analysis failed")
package shared
