package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrRealizedPnLNotFound indicates that a realized P&L record does not exist.
	ErrRealizedPnLNotFound = errors.New("realized pnl record not found")

	// ErrCredentialNotFound indicates that no API credential is stored for the
	// requested portfolio and source, and no environment fallback is configured.
	ErrCredentialNotFound = errors.New("source credential not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateEntry indicates that a fill with the same composite key
	// (portfolio, symbol, quantity, price, timestamp) already exists in the
	// ledger. Duplicates are expected during re-imports and are not failures.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrUnknownSource indicates a credential or sync request for a source the
	// system does not integrate with.
	ErrUnknownSource = errors.New("unknown source")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrievePortfolios   = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveRealizedPnL  = errors.New("failed to retrieve realized pnl")
	ErrFailedToCreatePortfolio      = errors.New("failed to create portfolio")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToComputeSummary       = errors.New("failed to compute portfolio summary")
	ErrFailedToStoreCredential      = errors.New("failed to store credential")
	ErrInvalidCSVHeaders            = errors.New("invalid CSV headers")
	ErrInvalidStatementFile         = errors.New("invalid statement file")
)
