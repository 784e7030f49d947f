// Package shared holds cross-cutting helpers that belong to no single
// domain package. Its only resident today is testutil, the in-memory
// slog capture used to assert on structured log output in tests.
package shared
