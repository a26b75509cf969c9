package parsers

import (
	"fmt"
	"io"

	"invcost/model"
)

// ParseCostReportCSV reads a report produced by the CSV export back into
// records. Every export column is required.
func ParseCostReportCSV(r io.Reader) ([]model.PartCostRecord, error) {
	reader, colIndex, err := openCSV(r, model.CostReportColumns)
	if err != nil {
		return nil, err
	}
	reader.LazyQuotes = false

	var records []model.PartCostRecord
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		// strict: a trimmed description would not round-trip
		get := func(name string) string {
			if i := colIndex[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		num := func(name string) (float64, error) {
			return parseNumber(line, name, get(name))
		}

		pr := model.PartCostRecord{
			PartID:             get("part_id"),
			Description:        get("description"),
			DesignGroup:        get("design_group"),
			ProductLine:        get("product_line"),
			ClassificationCode: get("classification_code"),
		}
		if pr.QuantityOnHand, err = num("quantity_on_hand"); err != nil {
			return nil, err
		}
		if pr.TotalCost, err = num("total_cost"); err != nil {
			return nil, err
		}
		if pr.CostWarehouse, err = num("cost_warehouse"); err != nil {
			return nil, err
		}
		if pr.CostWIP, err = num("cost_wip"); err != nil {
			return nil, err
		}
		if pr.CostExlPick, err = num("cost_exl_pick"); err != nil {
			return nil, err
		}
		records = append(records, pr)
	}
	return records, nil
}
