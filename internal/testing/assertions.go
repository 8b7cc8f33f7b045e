package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
)

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, TesSUCCESS, result.Code)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireTxError asserts that a transaction failed with err in its chain.
func RequireTxError(t *testing.T, result TxResult, err error) {
	t.Helper()
	require.False(t, result.Success, "Expected transaction failure with %v", err)
	require.ErrorIs(t, result.Err, err)
}

// RequireBalance asserts that owner holds expected units of mint.
func RequireBalance(t *testing.T, env *TestEnv, owner, mint *Account, expected uint64) {
	t.Helper()
	actual := env.Balance(owner, mint)
	require.Equal(t, expected, actual,
		"Account %s balance of %s mismatch: expected %d, got %d",
		owner.Name, mint.Name, expected, actual)
}

// RequireExists asserts that an entry exists at k.
func RequireExists(t *testing.T, env *TestEnv, k keylet.Keylet) {
	t.Helper()
	require.True(t, env.Exists(k), "Expected %s entry to exist", k.Type)
}

// RequireNotExists asserts that no entry exists at k.
func RequireNotExists(t *testing.T, env *TestEnv, k keylet.Keylet) {
	t.Helper()
	require.False(t, env.Exists(k), "Expected %s entry not to exist", k.Type)
}

// RequireUnchanged asserts that state equals an earlier Snapshot.
func RequireUnchanged(t *testing.T, env *TestEnv, before map[[32]byte]string) {
	t.Helper()
	require.Equal(t, before, env.Snapshot(), "Expected ledger state to be unchanged")
}
