package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/railzwaylabs/riskscore/internal/feature/domain"
)

var exportHeader = []string{
	"Customer_ID",
	"Customer_Name",
	"Industry",
	"Region",
	"Customer_Since",
	"Credit_Term_Days",
	"Risk_Category",
	"Total_Invoices",
	"Avg_Invoice_Amount",
	"Late_Payment_Rate",
	"Default_Rate",
	"Avg_Delay_Days",
	"Total_Amount_Invoiced",
	"Total_Amount_Paid",
}

// WriteCSV writes the feature table. Undefined values are written as empty
// cells.
func WriteCSV(w io.Writer, rows []domain.CustomerFeatures) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.CustomerID,
			row.CustomerName,
			row.Industry,
			row.Region,
			row.CustomerSince.UTC().Format(time.DateOnly),
			formatIntPtr(row.CreditTermDays),
			formatStringPtr(row.RiskCategory),
			strconv.Itoa(row.TotalInvoices),
			formatFloatPtr(row.AvgInvoiceAmount),
			formatFloatPtr(row.LatePaymentRate),
			formatFloatPtr(row.DefaultRate),
			formatFloatPtr(row.AvgDelayDays),
			formatFloat(row.TotalAmountInvoiced),
			formatFloat(row.TotalAmountPaid),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
