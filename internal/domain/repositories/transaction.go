package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes fn within a transaction. The transaction commits only
	// if fn returns nil; any error (or panic) rolls back every write made
	// through the context passed to fn.
	ExecTx(ctx context.Context, fn TxFn) error
}
