package service

import "github.com/railzwaylabs/riskscore/internal/feature/domain"

const yearMonthLayout = "2006-01"

func Flag(rows []domain.JoinedRow) []domain.FlaggedRow {
	out := make([]domain.FlaggedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, flagRow(row))
	}
	return out
}

// flagRow marks an invoice late only when a strictly positive delay was
// observed. An unknown delay is never evidence of lateness.
func flagRow(row domain.JoinedRow) domain.FlaggedRow {
	return domain.FlaggedRow{
		JoinedRow:        row,
		IsLate:           row.DelayDays != nil && *row.DelayDays > 0,
		IsDefault:        !row.IsPaid,
		InvoiceYearMonth: row.InvoiceDate.UTC().Format(yearMonthLayout),
	}
}
