package fundamentals

import (
    "math"
    "testing"

    "investreporter/internal/provider"
)

func almostEqual(a, b float64) bool {
    return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestNormalize_Brapi(t *testing.T) {
    raw := provider.RawRecord{
        Provider: "brapi",
        Ticker:   "BBAS3",
        Fields: map[string]string{
            "regularMarketPrice":       "21.31",
            "marketCap":                "122124000000",
            "fiftyTwoWeekHigh":         "29.18",
            "averageDailyVolume3Month": "31850000",
            "priceEarnings":            "5.65",
        },
    }

    n, errs := Normalize(raw)

    if len(errs) != 0 {
        t.Fatalf("errors = %v, want none", errs)
    }
    want := map[Field]float64{
        FieldPrice:     21.31,
        FieldMarketCap: 122124000000,
        FieldHigh52w:   29.18,
        FieldAvgVolume: 31850000,
        FieldPERatio:   5.65,
    }
    if len(n.Fields) != len(want) {
        t.Fatalf("fields = %v, want %d entries", n.Fields, len(want))
    }
    for f, v := range want {
        got, ok := n.Fields[f]
        if !ok || !almostEqual(got.Value, v) {
            t.Fatalf("%s = %+v, want %v", f, got, v)
        }
        if got.Unit != UnitOf(f) {
            t.Fatalf("%s unit = %s, want %s", f, got.Unit, UnitOf(f))
        }
    }
}

func TestNormalize_Investidor10_PtBRConventions(t *testing.T) {
    raw := provider.RawRecord{
        Provider: "investidor10",
        Ticker:   "BBAS3",
        Fields: map[string]string{
            "Preço":            "21,31",
            "P/L":              "5,65",
            "P/VP":             "0,92",
            "Dividend Yield":   "12,5%",
            "ROE":              "12,1%",
            "Valor de Mercado": "R$ 122,12 B",
        },
    }

    n, errs := Normalize(raw)

    if len(errs) != 0 {
        t.Fatalf("errors = %v, want none", errs)
    }
    cases := map[Field]float64{
        FieldPrice:         21.31,
        FieldPERatio:       5.65,
        FieldPBRatio:       0.92,
        FieldDividendYield: 0.125,
        FieldROE:           0.121,
        FieldMarketCap:     122.12e9,
    }
    for f, want := range cases {
        got := n.Fields[f]
        if !almostEqual(got.Value, want) {
            t.Fatalf("%s = %v, want %v", f, got.Value, want)
        }
    }
}

func TestNormalize_FieldGranularFailure(t *testing.T) {
    raw := provider.RawRecord{
        Provider: "investidor10",
        Fields: map[string]string{
            "Preço": "não disponível",
            "P/L":   "5,65",
        },
    }

    n, errs := Normalize(raw)

    if len(errs) != 1 || errs[0].Field != FieldPrice {
        t.Fatalf("errs = %v, want one price failure", errs)
    }
    if _, ok := n.Fields[FieldPrice]; ok {
        t.Fatal("unparsable price should be dropped, not zero-filled")
    }
    if got := n.Fields[FieldPERatio]; !almostEqual(got.Value, 5.65) {
        t.Fatalf("pe_ratio = %v, should survive its sibling's failure", got.Value)
    }
}

func TestNormalize_UnknownFieldsDropped(t *testing.T) {
    raw := provider.RawRecord{
        Provider: "investidor10",
        Fields: map[string]string{
            "Liquidez Diária": "R$ 237,23 M",
            "VARIACAO (12M)":  "18,2%",
            "Preço":           "21,31",
        },
    }

    n, errs := Normalize(raw)

    if len(errs) != 0 {
        t.Fatalf("unknown fields must drop silently, got %v", errs)
    }
    if len(n.Fields) != 1 {
        t.Fatalf("fields = %v, want only price", n.Fields)
    }
}

func TestNormalize_UnknownProvider(t *testing.T) {
    raw := provider.RawRecord{Provider: "yahoo", Fields: map[string]string{"price": "10"}}

    n, errs := Normalize(raw)

    if len(n.Fields) != 0 || len(errs) != 0 {
        t.Fatalf("unknown provider should normalize to nothing, got %v / %v", n.Fields, errs)
    }
}

func TestParsePTNumber(t *testing.T) {
    cases := map[string]float64{
        "1.234,56":     1234.56,
        "21,31":        21.31,
        "0,92":         0.92,
        "122.124":      122124,
        "-3,10":        -3.10,
        "1.234.567,89": 1234567.89,
    }
    for in, want := range cases {
        got, err := parsePTNumber(in)
        if err != nil { t.Fatalf("parsePTNumber(%q): %v", in, err) }
        if !almostEqual(got, want) { t.Fatalf("parsePTNumber(%q) = %v, want %v", in, got, want) }
    }
    if _, err := parsePTNumber(""); err == nil {
        t.Fatal("empty input should fail")
    }
}

func TestParseNumber_Currency(t *testing.T) {
    cases := map[string]float64{
        "R$ 650,41 B":   650.41e9,
        "R$ 237,23 M":   237.23e6,
        "R$ 1,2 tri":    1.2e12,
        "R$ 850 mil":    850e3,
        "R$ 122.124,00": 122124,
    }
    for in, want := range cases {
        got, err := parseNumber(in, parsePTCurrency)
        if err != nil { t.Fatalf("parseNumber(%q): %v", in, err) }
        if !almostEqual(got, want) { t.Fatalf("parseNumber(%q) = %v, want %v", in, got, want) }
    }
    if _, err := parseNumber("R$ 10 zz", parsePTCurrency); err == nil {
        t.Fatal("unknown magnitude suffix should fail")
    }
}
