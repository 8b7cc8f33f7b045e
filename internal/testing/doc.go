// Package testing provides test infrastructure for escrowd transaction
// testing.
//
// The package provides:
//   - TestEnv: an engine over an in-memory state store
//   - Account: deterministic named accounts with ed25519 keypairs
//   - Mint helpers: CreateMint, MintTo and Balance
//   - Assertions: RequireTxSuccess, RequireTxFail, RequireBalance
//
// # Basic Usage
//
//	func TestSwap(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    alice := env.Account("alice")
//	    mintA := env.NewMint("mintA", alice, 6)
//	    env.MintTo(alice, mintA, alice, 10)
//
//	    result := env.Submit(escrow.MakeOffer(alice, mintA, mintB).ID(1).Offered(3).Wanted(2).Build())
//	    testing.RequireTxSuccess(t, result)
//	}
//
// Transactions passed to Submit are given a fresh Nonce when they have none
// and are signed by the registered account named in their Account field.
package testing
