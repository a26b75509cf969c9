package aggregation

import (
	"fmt"
	"strings"

	"invcost/model"
)

// ZoneMap is the location lookup: location code to storage zone.
type ZoneMap map[string]model.Zone

// DefaultZoneMap maps the ERP's standard location codes.
func DefaultZoneMap() ZoneMap {
	return ZoneMap{
		"WH":      model.ZoneWarehouse,
		"WIP":     model.ZoneWIP,
		"EXLPICK": model.ZoneExternalPick,
	}
}

// NewZoneMap validates a configured location-to-zone mapping.
func NewZoneMap(m map[string]string) (ZoneMap, error) {
	zones := make(ZoneMap, len(m))
	for loc, name := range m {
		zone, err := model.ParseZone(name)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", loc, err)
		}
		zones[strings.TrimSpace(loc)] = zone
	}
	return zones, nil
}

// ZoneFor looks up a location code. Fixed-width CHAR columns pad codes with
// spaces, so the code is trimmed first.
func (z ZoneMap) ZoneFor(location string) (model.Zone, bool) {
	zone, ok := z[strings.TrimSpace(location)]
	return zone, ok
}
