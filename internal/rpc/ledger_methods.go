package rpc

import (
	"encoding/json"
	"errors"
	"strconv"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
	"github.com/LeJamon/goEscrowd/internal/core/tx/token"
)

// offerInfo handles the offer_info method. The offer is named either by
// (maker, offer_id) or by its address.
func offerInfo(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Maker   string        `json:"maker"`
		OfferID *Uint64String `json:"offer_id"`
		Offer   string        `json:"offer"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}

	var (
		state *escrow.OfferState
		err   error
	)
	switch {
	case request.Offer != "":
		addr, rpcErr := decodeAddress("offer", request.Offer)
		if rpcErr != nil {
			return nil, rpcErr
		}
		err = ctx.Services.Engine.Read(func(view tx.LedgerView) error {
			state, err = escrow.LookupOfferAt(view, addr)
			return err
		})
	case request.Maker != "" && request.OfferID != nil:
		maker, rpcErr := decodeAddress("maker", request.Maker)
		if rpcErr != nil {
			return nil, rpcErr
		}
		err = ctx.Services.Engine.Read(func(view tx.LedgerView) error {
			state, err = escrow.LookupOffer(view, maker, uint64(*request.OfferID))
			return err
		})
	default:
		return nil, RpcErrorInvalidParams("Missing required parameter: offer or maker and offer_id")
	}
	// An address holding some other entry names no offer
	if errors.Is(err, tx.ErrEntryNotFound) || errors.Is(err, sle.ErrWrongEntryType) {
		return nil, RpcErrorEntryNotFound("Offer not found")
	}
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	fields := state.Offer.Fields()
	return map[string]interface{}{
		"offer":         fields,
		"offer_id":      strconv.FormatUint(state.Offer.ID, 10),
		"address":       addresscodec.EncodeAddress(state.Address),
		"vault":         addresscodec.EncodeAddress(state.Vault),
		"vault_balance": strconv.FormatUint(state.VaultBalance, 10),
	}, nil
}

// accountBalance handles the account_balance method
func accountBalance(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account"`
		Mint    string `json:"mint"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := decodeAddress("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	mintAddr, rpcErr := decodeAddress("mint", request.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var (
		mint    *sle.Mint
		balance uint64
		exists  bool
	)
	ata := keylet.TokenAccount(owner, mintAddr)
	err := ctx.Services.Engine.Read(func(view tx.LedgerView) error {
		ledger := token.New(view)
		var err error
		if mint, err = ledger.Mint(mintAddr); err != nil {
			return err
		}
		if exists, err = ledger.AccountExists(ata); err != nil {
			return err
		}
		balance, err = ledger.BalanceOf(owner, mintAddr)
		return err
	})
	if errors.Is(err, token.ErrMintNotFound) {
		return nil, RpcErrorEntryNotFound("Mint not found")
	}
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	return map[string]interface{}{
		"account":       request.Account,
		"mint":          request.Mint,
		"token_account": addresscodec.EncodeAddress(ata.Key),
		"exists":        exists,
		"balance":       strconv.FormatUint(balance, 10),
		"ui_amount":     token.FormatAmount(balance, mint.Decimals),
		"decimals":      mint.Decimals,
	}, nil
}

// mintInfo handles the mint_info method
func mintInfo(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Mint string `json:"mint"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	mintAddr, rpcErr := decodeAddress("mint", request.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var mint *sle.Mint
	err := ctx.Services.Engine.Read(func(view tx.LedgerView) error {
		var err error
		mint, err = token.New(view).Mint(mintAddr)
		return err
	})
	if errors.Is(err, token.ErrMintNotFound) {
		return nil, RpcErrorEntryNotFound("Mint not found")
	}
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	return map[string]interface{}{
		"mint":      request.Mint,
		"authority": addresscodec.EncodeAddress(mint.Authority),
		"decimals":  mint.Decimals,
		"supply":    strconv.FormatUint(mint.Supply, 10),
		"ui_supply": token.FormatAmount(mint.Supply, mint.Decimals),
	}, nil
}
