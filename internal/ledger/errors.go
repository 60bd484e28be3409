package ledger

import "github.com/pkg/errors"

// Rejection reasons. All of these are expected, recoverable outcomes of a
// trade request: the account state is untouched and no trade is recorded.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrNoPosition             = errors.New("no position in this symbol")
	ErrInsufficientShares     = errors.New("insufficient shares")
	ErrInvalidQuantityOrPrice = errors.New("quantity and price must be positive")
)

// ErrStorageFailure marks a fault in the underlying store rather than a
// trade rejection. The failed transaction leaves no partial mutation
// behind, but the engine does not retry on its own: retrying a financial
// mutation blindly risks duplicate execution, so retry policy belongs to
// the caller.
var ErrStorageFailure = errors.New("storage failure")

// IsRejection reports whether err is a trade rejection (bad request,
// answerable to the user) as opposed to a storage fault.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrAccountNotFound,
		ErrInsufficientBalance,
		ErrNoPosition,
		ErrInsufficientShares,
		ErrInvalidQuantityOrPrice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func storageFailure(err error, op string) error {
	return errors.Wrapf(ErrStorageFailure, "%s: %v", op, err)
}
