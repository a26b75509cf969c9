package parsers

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartMasterCSV(t *testing.T) {
	in := "\xef\xbb\xbfpt_part, pt_desc1 ,pt_dsgn_grp,pt_cost\n P1 ,Gear,A,5\nP2,,,\n"
	records, err := ParsePartMasterCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, PartMasterRecord{Part: "P1", Description: "Gear", DesignGroup: "A", Cost: 5}, records[0])
	assert.Equal(t, PartMasterRecord{Part: "P2"}, records[1])
}

func TestParsePartMasterCSV_Errors(t *testing.T) {
	_, err := ParsePartMasterCSV(strings.NewReader("pt_part,pt_desc1\nP1,x\n"))
	assert.ErrorContains(t, err, "pt_cost")

	_, err = ParsePartMasterCSV(strings.NewReader("pt_part,pt_cost\nP1,five\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParsePartMasterCSV(strings.NewReader("pt_part,pt_cost\n,1\n"))
	assert.ErrorContains(t, err, "pt_part is empty")

	_, err = ParsePartMasterCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseLocationDetailCSV(t *testing.T) {
	records, err := ParseLocationDetailCSV(strings.NewReader("ld_part,ld_loc,qty_avail\nP1,WH,2.5\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, LocationDetailRecord{Part: "P1", Location: "WH", QtyAvail: 2.5}, records[0])

	_, err = ParseLocationDetailCSV(strings.NewReader("ld_part,ld_loc,qty_avail\nP1,,1\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestParseCostReportCSV_RequiresAllColumns(t *testing.T) {
	_, err := ParseCostReportCSV(strings.NewReader("part_id,description\nP1,x\n"))
	assert.ErrorContains(t, err, "missing required columns: design_group, product_line")
}

func TestSkipBOM(t *testing.T) {
	cases := map[string]string{
		"with bom":    "\xef\xbb\xbfpart_id\n",
		"without bom": "part_id\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := io.ReadAll(SkipBOM(strings.NewReader(in)))
			require.NoError(t, err)
			assert.Equal(t, "part_id\n", string(out))
		})
	}

	out, err := io.ReadAll(SkipBOM(strings.NewReader("\xef\xbb")))
	require.NoError(t, err)
	assert.Equal(t, "\xef\xbb", string(out), "short input is passed through")
}
