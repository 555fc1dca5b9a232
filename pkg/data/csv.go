package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	materialColumns = []string{
		"Material_ID", "Material_Name", "Category", "Density_kg_m3",
		"Tensile_Strength_MPa", "CO2_Emission_kg", "Cost_per_kg", "Biodegradable",
	}

	historyColumns = []string{
		"Order_ID", "Date", "Category", "Weight_kg", "Volumetric_Weight_kg",
		"L_cm", "W_cm", "H_cm", "Fragility", "Moisture_Sens", "Shipping_Mode",
		"Distance_km", "Packaging_Used", "Cost_USD", "CO2_Emission_kg",
	}

	orderDateLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"01/02/2006",
	}
)

// LoadMaterialsCSV reads and cleans the raw material catalog: duplicate
// IDs keep the first row, negative numerics are clipped to zero. A missing
// required column or a non-numeric required value aborts the whole load.
func LoadMaterialsCSV(path string) ([]*Material, error) {
	rows, header, err := readCSV(path, materialColumns)
	if err != nil {
		return nil, err
	}

	list := make([]*Material, 0, len(rows))
	seen := make(map[int64]bool)
	for i, row := range rows {
		r := rowReader{header: header, row: row, line: i + 2}
		m := &Material{
			Name:          r.str("Material_Name"),
			Category:      r.str("Category"),
			Biodegradable: parseYesNo(r.str("Biodegradable")),
		}
		m.ID = r.id("Material_ID")
		m.DensityKgM3 = clipNegative(r.num("Density_kg_m3"))
		m.TensileMPa = clipNegative(r.num("Tensile_Strength_MPa"))
		m.CO2EmissionKg = clipNegative(r.num("CO2_Emission_kg"))
		m.CostPerKg = clipNegative(r.num("Cost_per_kg"))
		if r.err != nil {
			return nil, r.err
		}
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		list = append(list, m)
	}
	log.Debugf("loaded %d materials from %s", len(list), path)
	return list, nil
}

// LoadHistoryCSV reads and cleans the raw shipment history. Unparseable
// dates are coerced to the zero time with a warning; downstream stats
// exclude those rows from date buckets.
func LoadHistoryCSV(path string) ([]*Shipment, error) {
	rows, header, err := readCSV(path, historyColumns)
	if err != nil {
		return nil, err
	}

	list := make([]*Shipment, 0, len(rows))
	seen := make(map[int64]bool)
	for i, row := range rows {
		r := rowReader{header: header, row: row, line: i + 2}
		s := &Shipment{
			ItemName:      r.optStr("Item_Name"),
			Category:      r.str("Category"),
			ShippingMode:  r.str("Shipping_Mode"),
			PackagingUsed: r.str("Packaging_Used"),
			MoistureSens:  r.flag("Moisture_Sens"),
		}
		s.OrderID = r.id("Order_ID")
		s.WeightKg = clipNegative(r.num("Weight_kg"))
		s.VolumetricWeightKg = clipNegative(r.num("Volumetric_Weight_kg"))
		s.LengthCm = clipNegative(r.num("L_cm"))
		s.WidthCm = clipNegative(r.num("W_cm"))
		s.HeightCm = clipNegative(r.num("H_cm"))
		s.Fragility = int(r.num("Fragility"))
		s.DistanceKm = clipNegative(r.num("Distance_km"))
		s.CostUSD = clipNegative(r.num("Cost_USD"))
		s.CO2EmissionKg = clipNegative(r.num("CO2_Emission_kg"))
		if r.err != nil {
			return nil, r.err
		}

		date, err := ParseOrderDate(r.str("Date"))
		if err != nil {
			log.Warnf("order %d: coercing unparseable date %q", s.OrderID, r.str("Date"))
		}
		s.OrderDate = date

		if seen[s.OrderID] {
			continue
		}
		seen[s.OrderID] = true
		list = append(list, s)
	}
	log.Debugf("loaded %d history rows from %s", len(list), path)
	return list, nil
}

// ParseOrderDate parses an order date in any of the accepted layouts.
// Returns the zero time and ErrDateParse when nothing matches.
func ParseOrderDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrDateParse, "date: %q", v)
}

func readCSV(path string, required []string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open csv file: %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read csv header: %s", path)
	}
	header := make(map[string]int, len(head))
	for i, h := range head {
		header[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return nil, nil, errors.Wrapf(ErrDataIntegrity, "%s: missing required column %q", path, col)
		}
	}

	rows := make([][]string, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read csv row: %s", path)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// rowReader accumulates the first parse error so callers can chain reads
// and check once per row.
type rowReader struct {
	header map[string]int
	row    []string
	line   int
	err    error
}

func (r *rowReader) cell(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r *rowReader) str(col string) string {
	return r.cell(col)
}

func (r *rowReader) optStr(col string) string {
	return r.cell(col)
}

func (r *rowReader) num(col string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(r.cell(col), 64)
	if err != nil {
		r.err = errors.Wrapf(ErrDataIntegrity, "line %d: column %q is not numeric: %q", r.line, col, r.cell(col))
		return 0
	}
	return v
}

func (r *rowReader) id(col string) int64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(r.cell(col), 10, 64)
	if err != nil {
		r.err = errors.Wrapf(ErrDataIntegrity, "line %d: column %q is not an integer: %q", r.line, col, r.cell(col))
		return 0
	}
	return v
}

func (r *rowReader) flag(col string) bool {
	v := strings.ToLower(r.cell(col))
	return v == "1" || v == "true" || v == "yes"
}

func parseYesNo(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "yes")
}

func clipNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
