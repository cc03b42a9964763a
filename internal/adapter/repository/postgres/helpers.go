package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/naphex/ledger/internal/usecase"
)

// pgxTx unwraps the pgx transaction behind a usecase.Transaction. Repos
// in this package only ever receive transactions from TxManager.
func pgxTx(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

// limitOffsetClause appends LIMIT/OFFSET placeholders after the first
// argCount positional arguments.
func limitOffsetClause(argCount int) string {
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
}
