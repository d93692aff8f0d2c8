package hedera

import (
	hsdk "github.com/hashgraph/hedera-sdk-go/v2"
)

// network is the subset of the SDK session the adapter drives. The SDK calls
// are blocking and take no context.
type network interface {
	freeze(tx *hsdk.ScheduleCreateTransaction) (*hsdk.ScheduleCreateTransaction, error)
	execute(tx *hsdk.ScheduleCreateTransaction) (hsdk.TransactionID, error)
	receipt(id hsdk.TransactionID) (hsdk.TransactionReceipt, error)
	balance(id hsdk.AccountID) (hsdk.AccountBalance, error)
	close() error
}

type sdkNetwork struct {
	client *hsdk.Client
	key    hsdk.PrivateKey
}

func (n *sdkNetwork) freeze(tx *hsdk.ScheduleCreateTransaction) (*hsdk.ScheduleCreateTransaction, error) {
	frozen, err := tx.FreezeWith(n.client)
	if err != nil {
		return nil, err
	}
	return frozen.Sign(n.key), nil
}

func (n *sdkNetwork) execute(tx *hsdk.ScheduleCreateTransaction) (hsdk.TransactionID, error) {
	resp, err := tx.Execute(n.client)
	if err != nil {
		return hsdk.TransactionID{}, err
	}
	return resp.TransactionID, nil
}

func (n *sdkNetwork) receipt(id hsdk.TransactionID) (hsdk.TransactionReceipt, error) {
	return hsdk.NewTransactionReceiptQuery().
		SetTransactionID(id).
		Execute(n.client)
}

func (n *sdkNetwork) balance(id hsdk.AccountID) (hsdk.AccountBalance, error) {
	return hsdk.NewAccountBalanceQuery().
		SetAccountID(id).
		Execute(n.client)
}

func (n *sdkNetwork) close() error {
	return n.client.Close()
}
