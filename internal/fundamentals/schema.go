// Package fundamentals reconciles fundamentals from two providers into
// one best-effort record with per-field provenance, discrepancy
// annotations and an overall quality flag.
package fundamentals

// Field is a canonical, source-independent name for a fundamentals
// metric. The set is fixed; provider-specific names map onto it during
// normalization and nowhere else.
type Field string

const (
    FieldPrice         Field = "price"
    FieldPERatio       Field = "pe_ratio"
    FieldPBRatio       Field = "pb_ratio"
    FieldMarketCap     Field = "market_cap"
    FieldDividendYield Field = "dividend_yield"
    FieldROE           Field = "roe"
    FieldHigh52w       Field = "52w_high"
    FieldLow52w        Field = "52w_low"
    FieldAvgVolume     Field = "avg_volume"
    FieldEPS           Field = "eps"
)

// AllFields is the canonical iteration order. Merging walks this slice
// rather than map keys so output is deterministic.
var AllFields = []Field{
    FieldPrice,
    FieldPERatio,
    FieldPBRatio,
    FieldMarketCap,
    FieldDividendYield,
    FieldROE,
    FieldHigh52w,
    FieldLow52w,
    FieldAvgVolume,
    FieldEPS,
}

// Unit describes how a normalized value is denominated. Percentages are
// stored as fraction-of-one and currency amounts in BRL with the symbol
// stripped; rendering back to display form is the report layer's job.
type Unit string

const (
    UnitCurrency Unit = "brl"
    UnitRatio    Unit = "ratio"
    UnitFraction Unit = "fraction"
    UnitCount    Unit = "count"
)

// Class partitions fields by which provider is considered more reliable
// for them. The structured market-data provider wins market fields; the
// scraped fundamentals page wins valuation fields.
type Class int

const (
    ClassMarket Class = iota
    ClassValuation
)

type fieldSpec struct {
    unit  Unit
    class Class
}

var schema = map[Field]fieldSpec{
    FieldPrice:         {UnitCurrency, ClassMarket},
    FieldPERatio:       {UnitRatio, ClassValuation},
    FieldPBRatio:       {UnitRatio, ClassValuation},
    FieldMarketCap:     {UnitCurrency, ClassMarket},
    FieldDividendYield: {UnitFraction, ClassValuation},
    FieldROE:           {UnitFraction, ClassValuation},
    FieldHigh52w:       {UnitCurrency, ClassMarket},
    FieldLow52w:        {UnitCurrency, ClassMarket},
    FieldAvgVolume:     {UnitCount, ClassMarket},
    FieldEPS:           {UnitCurrency, ClassValuation},
}

// UnitOf returns the canonical unit for a field.
func UnitOf(f Field) Unit { return schema[f].unit }

// ClassOf returns the reliability class for a field.
func ClassOf(f Field) Class { return schema[f].class }
