package rpc

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"
)

// submit handles the submit method: apply a signed transaction
func submit(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		TxJSON json.RawMessage `json:"tx_json"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if len(request.TxJSON) == 0 {
		return nil, RpcErrorInvalidParams("Missing required parameter: tx_json")
	}

	transaction, err := tx.FromJSON(request.TxJSON)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid transaction: " + err.Error())
	}

	result := ctx.Services.Engine.Apply(ctx.Context, transaction)

	response := map[string]interface{}{
		"engine_result":         result.Result.String(),
		"engine_result_code":    int(result.Result),
		"engine_result_message": result.Message,
		"applied":               result.Applied,
		"hash":                  tx.HashString(result.Hash),
		"tx_json":               transaction,
		"meta":                  result.Metadata,
	}
	if result.Err != nil {
		response["error"] = result.Err.Error()
	}
	return response, nil
}

// txLookup handles the tx method
func txLookup(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Transaction string `json:"transaction"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Transaction == "" {
		return nil, RpcErrorInvalidParams("Missing required parameter: transaction")
	}
	if ctx.Services.Journal == nil {
		return nil, RpcErrorNotEnabled("Transaction journal is not configured")
	}
	hash, err := relationaldb.ParseHash(request.Transaction)
	if err != nil {
		return nil, NewRpcError(RpcINVALID_HASH, "invalidHash", "invalidHash", err.Error())
	}

	rec, err := ctx.Services.Journal.GetTx(ctx.Context, hash)
	if errors.Is(err, relationaldb.ErrTransactionNotFound) {
		return nil, RpcErrorTxnNotFound("Transaction not found")
	}
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return recordToJSON(rec)
}

// accountTx handles the account_tx method
func accountTx(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account"`
		Limit   int    `json:"limit"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if _, rpcErr := decodeAddress("account", request.Account); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Limit < 0 {
		return nil, RpcErrorInvalidParams("limit must be non-negative")
	}
	if ctx.Services.Journal == nil {
		return nil, RpcErrorNotEnabled("Transaction journal is not configured")
	}

	records, err := ctx.Services.Journal.AccountTxs(ctx.Context, request.Account, request.Limit)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	transactions := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		entry, rpcErr := recordToJSON(&records[i])
		if rpcErr != nil {
			return nil, rpcErr
		}
		transactions = append(transactions, entry)
	}
	return map[string]interface{}{
		"account":      request.Account,
		"transactions": transactions,
	}, nil
}

func recordToJSON(rec *relationaldb.TxRecord) (map[string]interface{}, *RpcError) {
	payload, err := relationaldb.DecodePayload(rec.Payload)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	out := map[string]interface{}{
		"hash":               tx.HashString(rec.Hash),
		"seq":                rec.Seq,
		"TransactionType":    rec.TxType,
		"Account":            rec.Account,
		"engine_result":      rec.Result,
		"engine_result_code": rec.ResultCode,
		"applied":            rec.Applied,
		"date":               rec.CreatedAt.Unix(),
		"tx_json":            json.RawMessage(payload.TxJSON),
	}
	if len(payload.Metadata) > 0 {
		out["meta"] = json.RawMessage(payload.Metadata)
	}
	if payload.Error != "" {
		out["error"] = payload.Error
	}
	return out, nil
}
