package models

import "errors"

// File-level failures. Row-level problems are counted, not returned.
var (
	// ErrSourceUnreadable means the file is missing, its encoding or
	// delimiter could not be determined, or the PDF has no extractable text.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrNoTransactions means parsing finished without a single transaction.
	// No output file is written in that case.
	ErrNoTransactions = errors.New("no transactions found")
	// ErrUnknownBank means the bank could not be resolved or detected.
	ErrUnknownBank = errors.New("unknown bank")
	// ErrUnsupportedFormat means the bank has no parser for the file type.
	ErrUnsupportedFormat = errors.New("unsupported format for bank")
)
