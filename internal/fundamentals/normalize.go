package fundamentals

import (
    "fmt"
    "regexp"
    "strconv"
    "strings"

    "investreporter/internal/provider"
)

// Value is a normalized field value. Fractions are fraction-of-one,
// currency amounts are plain BRL numbers.
type Value struct {
    Value float64 `json:"value"`
    Unit  Unit    `json:"unit"`
}

// Normalized is one provider's record mapped onto the canonical schema.
type Normalized struct {
    Provider string          `json:"provider"`
    Fields   map[Field]Value `json:"fields"`
}

// FieldError reports a single raw field that failed to parse.
// Normalization is field-granular: one bad value drops that field and
// nothing else.
type FieldError struct {
    Provider string
    Raw      string
    Field    Field
    Err      error
}

func (e FieldError) Error() string {
    return fmt.Sprintf("%s: field %q -> %s: %v", e.Provider, e.Raw, e.Field, e.Err)
}

// parseKind selects the lexical convention a raw value arrives in.
type parseKind int

const (
    parseEN         parseKind = iota // "21.31", "122124000000"
    parsePT                          // "1.234,56"
    parsePTPercent                   // "12,5%" -> 0.125
    parsePTCurrency                  // "R$ 650,41 B" -> 650410000000
)

type fieldRule struct {
    field Field
    kind  parseKind
}

// Mapping tables: raw provider field name -> canonical field + parse
// convention. Raw fields without a rule are dropped silently; providers
// expose plenty of values the unified record has no slot for.
var mappings = map[string]map[string]fieldRule{
    "brapi": {
        "regularMarketPrice":       {FieldPrice, parseEN},
        "marketCap":                {FieldMarketCap, parseEN},
        "fiftyTwoWeekHigh":         {FieldHigh52w, parseEN},
        "fiftyTwoWeekLow":          {FieldLow52w, parseEN},
        "averageDailyVolume3Month": {FieldAvgVolume, parseEN},
        "priceEarnings":            {FieldPERatio, parseEN},
        "earningsPerShare":         {FieldEPS, parseEN},
    },
    "investidor10": {
        "Preço":            {FieldPrice, parsePT},
        "P/L":              {FieldPERatio, parsePT},
        "P/VP":             {FieldPBRatio, parsePT},
        "Dividend Yield":   {FieldDividendYield, parsePTPercent},
        "ROE":              {FieldROE, parsePTPercent},
        "Valor de Mercado": {FieldMarketCap, parsePTCurrency},
        // "Liquidez Diária" is R$ traded per day, not share volume; it has
        // no canonical slot and falls through as an unknown field.
    },
}

// Normalize converts a raw provider record into the canonical schema.
// A provider with no mapping table yields an empty result; per-field
// parse failures are returned alongside the fields that did survive.
func Normalize(raw provider.RawRecord) (Normalized, []FieldError) {
    out := Normalized{Provider: raw.Provider, Fields: make(map[Field]Value, len(raw.Fields))}
    rules := mappings[raw.Provider]

    var errs []FieldError
    for name, value := range raw.Fields {
        rule, ok := rules[name]
        if !ok { continue }
        v, err := parseNumber(value, rule.kind)
        if err != nil {
            errs = append(errs, FieldError{Provider: raw.Provider, Raw: name, Field: rule.field, Err: err})
            continue
        }
        out.Fields[rule.field] = Value{Value: v, Unit: UnitOf(rule.field)}
    }
    return out, errs
}

var magnitudes = map[string]float64{
    "k": 1e3, "mil": 1e3,
    "m": 1e6, "mi": 1e6,
    "b": 1e9, "bi": 1e9,
    "t": 1e12, "tri": 1e12,
}

var ptCurrencyPattern = regexp.MustCompile(`^R?\$?\s*([\-\+]?[0-9\.,]+)\s*([A-Za-z]+)?$`)

func parseNumber(s string, kind parseKind) (float64, error) {
    s = strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
    switch kind {
    case parseEN:
        return strconv.ParseFloat(s, 64)
    case parsePT:
        return parsePTNumber(s)
    case parsePTPercent:
        v, err := parsePTNumber(strings.TrimSuffix(strings.TrimSpace(s), "%"))
        if err != nil { return 0, err }
        return v / 100.0, nil
    case parsePTCurrency:
        m := ptCurrencyPattern.FindStringSubmatch(strings.TrimPrefix(s, "R$"))
        if m == nil {
            return 0, fmt.Errorf("unrecognized currency amount %q", s)
        }
        v, err := parsePTNumber(m[1])
        if err != nil { return 0, err }
        if suffix := strings.ToLower(strings.TrimSpace(m[2])); suffix != "" {
            mult, ok := magnitudes[suffix]
            if !ok { return 0, fmt.Errorf("unknown magnitude suffix %q in %q", suffix, s) }
            v *= mult
        }
        return v, nil
    }
    return 0, fmt.Errorf("unknown parse kind %d", kind)
}

// parsePTNumber reads pt-BR formatted numbers: "." separates thousands,
// "," is the decimal mark ("1.234,56" -> 1234.56).
func parsePTNumber(s string) (float64, error) {
    cleaned := strings.NewReplacer(".", "", " ", "", ",", ".").Replace(strings.TrimSpace(s))
    if cleaned == "" {
        return 0, fmt.Errorf("empty number")
    }
    return strconv.ParseFloat(cleaned, 64)
}
