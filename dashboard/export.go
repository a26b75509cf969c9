package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"invcost/model"

	"github.com/xuri/excelize/v2"
)

const (
	inventorySheet = "Inventory"
	groupSheet     = "By Design Group"
)

func quoteAll(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func plainNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportFilename builds inventory_report_<source-id>_<YYYYMMDD_HHMMSS>.<ext>.
func ExportFilename(sourceID string, now time.Time, ext string) string {
	id := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '"':
			return '_'
		}
		return r
	}, sourceID)
	if id == "" {
		id = "inventory"
	}
	return fmt.Sprintf("inventory_report_%s_%s.%s", id, now.Format("20060102_150405"), ext)
}

// WriteCSV writes the records as UTF-8 CSV with a BOM and CRLF line endings.
// Numbers are written at full precision without grouping. Spreadsheets drop the
// BOM, but a plain encoding/csv reader returns it as part of the first header
// ("\ufeffpart_id"); read the file back with parsers.ParseCostReportCSV, which
// strips it.
func WriteCSV(w io.Writer, records []model.PartCostRecord) error {
	bw := bufio.NewWriter(w)
	bw.Write([]byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM
	bw.WriteString(strings.Join(model.CostReportColumns, ",") + "\r\n")

	for _, r := range records {
		record := []string{
			quoteAll(r.PartID),
			quoteAll(r.Description),
			quoteAll(r.DesignGroup),
			quoteAll(r.ProductLine),
			quoteAll(r.ClassificationCode),
			plainNumber(r.QuantityOnHand),
			plainNumber(r.TotalCost),
			plainNumber(r.CostWarehouse),
			plainNumber(r.CostWIP),
			plainNumber(r.CostExlPick),
		}
		bw.WriteString(strings.Join(record, ",") + "\r\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV export: %w", err)
	}
	return nil
}

// WriteXLSX writes the records to an Inventory sheet and the design-group
// totals for metric to a second sheet.
func WriteXLSX(w io.Writer, records []model.PartCostRecord, metric model.Metric) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := make([]interface{}, len(model.CostReportColumns))
	for i, c := range model.CostReportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.PartID, r.Description, r.DesignGroup, r.ProductLine, r.ClassificationCode,
			r.QuantityOnHand, r.TotalCost, r.CostWarehouse, r.CostWIP, r.CostExlPick,
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write XLSX row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(inventorySheet, "B", "B", 40); err != nil {
		return err
	}

	if _, err := f.NewSheet(groupSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	groupHeader := []interface{}{"design_group", string(metric), "share"}
	if err := f.SetSheetRow(groupSheet, "A1", &groupHeader); err != nil {
		return err
	}
	for i, g := range GroupByDesignGroup(records, metric) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{g.DesignGroup, g.MetricSum, g.Share}
		if err := f.SetSheetRow(groupSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX export: %w", err)
	}
	return nil
}
