package stream

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"payengine/internal/domain"
)

// WriteSnapshot renders the final account summaries as CSV. Amounts always
// carry exactly four fractional digits. A write fault preserves the rows
// already emitted and drops the remainder.
func WriteSnapshot(w io.Writer, rows []domain.AccountSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.Client), 10),
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			strconv.FormatBool(row.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row for client %d: %w", row.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
