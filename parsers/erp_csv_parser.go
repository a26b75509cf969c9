package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
)

// PartMasterRecord is one part_master row from an ERP CSV extract.
// Empty categorical cells stay empty here and are stored as NULL.
type PartMasterRecord struct {
	Part        string
	Description string
	DesignGroup string
	ProductLine string
	Chr02       string
	Cost        float64
}

// LocationDetailRecord is one location_detail row.
type LocationDetailRecord struct {
	Part     string
	Location string
	Lot      string
	QtyAvail float64
}

// ParsePartMasterCSV reads a part_master extract whose header uses the table's
// column names.
func ParsePartMasterCSV(r io.Reader) ([]PartMasterRecord, error) {
	reader, colIndex, err := openCSV(r, []string{"pt_part", "pt_cost"})
	if err != nil {
		return nil, err
	}
	idx := func(name string) int {
		if i, ok := colIndex[name]; ok {
			return i
		}
		return -1
	}

	var records []PartMasterRecord
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

		part := field(rec, idx("pt_part"))
		if part == "" {
			return nil, fmt.Errorf("line %d: pt_part is empty", line)
		}
		cost, err := parseNumber(line, "pt_cost", field(rec, idx("pt_cost")))
		if err != nil {
			return nil, err
		}

		records = append(records, PartMasterRecord{
			Part:        part,
			Description: field(rec, idx("pt_desc1")),
			DesignGroup: field(rec, idx("pt_dsgn_grp")),
			ProductLine: field(rec, idx("pt_prod_line")),
			Chr02:       field(rec, idx("pt__chr02")),
			Cost:        cost,
		})
	}
	return records, nil
}

// ParseLocationDetailCSV reads a location_detail extract.
func ParseLocationDetailCSV(r io.Reader) ([]LocationDetailRecord, error) {
	reader, colIndex, err := openCSV(r, []string{"ld_part", "ld_loc", "qty_avail"})
	if err != nil {
		return nil, err
	}
	idxLot, hasLot := colIndex["ld_lot"]
	if !hasLot {
		idxLot = -1
	}

	var records []LocationDetailRecord
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

		qty, err := parseNumber(line, "qty_avail", field(rec, colIndex["qty_avail"]))
		if err != nil {
			return nil, err
		}
		ld := LocationDetailRecord{
			Part:     field(rec, colIndex["ld_part"]),
			Location: field(rec, colIndex["ld_loc"]),
			Lot:      field(rec, idxLot),
			QtyAvail: qty,
		}
		if ld.Part == "" || ld.Location == "" {
			return nil, fmt.Errorf("line %d: ld_part and ld_loc are required", line)
		}
		records = append(records, ld)
	}
	return records, nil
}

func openCSV(r io.Reader, required []string) (*csv.Reader, map[string]int, error) {
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	colIndex, err := headerIndex(header, required)
	if err != nil {
		return nil, nil, err
	}
	return reader, colIndex, nil
}
