package repositories

import "context"

// txContextKey is the type for transaction context keys
type txContextKey struct{}

// SetTx stores a driver transaction (pgx.Tx, *sql.Tx) in the context so
// repositories called inside TransactionManager.ExecTx join it.
func SetTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFrom retrieves a transaction of type T from the context.
// Returns false if no transaction of that type is present
func TxFrom[T any](ctx context.Context) (T, bool) {
	tx, ok := ctx.Value(txContextKey{}).(T)
	return tx, ok
}
