package fundamentals

import (
    "math"

    "investreporter/internal/provider"
)

// Reconciliation policy constants. The tolerance and the per-class
// primary-provider table are deliberate choices, not tuned values: 5%
// absorbs quote-timing drift between a live API and a page rendered
// minutes earlier, while anything larger (or a sign flip) is a real
// disagreement worth surfacing.
const (
    // Tolerance is the relative difference above which two providers are
    // considered in disagreement over a field.
    Tolerance = 0.05
    // epsilon floors the denominator of the relative difference so
    // near-zero values cannot blow it up.
    epsilon = 1e-9
    // MinViableFields is the fewest merged fields a record can carry and
    // still be usable downstream; below it the record is degraded.
    MinViableFields = 3
)

// Quality summarizes how trustworthy a unified record is.
type Quality string

const (
    QualityOK       Quality = "ok"
    QualityPartial  Quality = "partial"
    QualityDegraded Quality = "degraded"
)

// ChosenField is the merged value for one canonical field, tagged with
// the provider it came from.
type ChosenField struct {
    Value  float64 `json:"value"`
    Unit   Unit    `json:"unit"`
    Source string  `json:"source"`
}

// Discrepancy records a material disagreement between providers over a
// field. Both values are carried: a discrepancy is surfaced, never
// hidden, even though a value is still chosen.
type Discrepancy struct {
    Field   Field              `json:"field"`
    Values  map[string]float64 `json:"values"` // provider -> reported value
    RelDiff float64            `json:"rel_diff"`
    Chosen  string             `json:"chosen"` // provider whose value was kept
}

// ProviderError is a provider-level fetch failure folded into the record.
type ProviderError struct {
    Provider string           `json:"provider"`
    Kind     provider.ErrKind `json:"kind"`
    Message  string           `json:"message"`
}

// UnifiedRecord is the outcome of one reconciliation. It is always
// produced - total failure shows up as quality "degraded" with an empty
// field map, never as an error.
type UnifiedRecord struct {
    Ticker        string                `json:"ticker"`
    Fields        map[Field]ChosenField `json:"fields"`
    Discrepancies []Discrepancy         `json:"discrepancies,omitempty"`
    Errors        []ProviderError       `json:"errors,omitempty"`
    Quality       Quality               `json:"quality"`
}

// Reconcile merges two normalized records into one unified record.
// It is pure and deterministic: no clock, no randomness, fixed field
// iteration order, so identical inputs produce identical outputs.
//
// Per field: a value reported by one provider is adopted as-is; a value
// reported by both is chosen by the field-class primary table, and a
// relative difference beyond Tolerance (or a sign mismatch) additionally
// records a Discrepancy. Fields reported by neither are absent, never
// zero-filled.
func Reconcile(symbol string, a, b Normalized, errA, errB *provider.FetchError) UnifiedRecord {
    rec := UnifiedRecord{
        Ticker: symbol,
        Fields: make(map[Field]ChosenField),
    }

    for _, f := range AllFields {
        va, oka := a.Fields[f]
        vb, okb := b.Fields[f]
        switch {
        case oka && okb:
            chosen, src := va, a.Provider
            if primaryProvider(f, a.Provider, b.Provider) == b.Provider {
                chosen, src = vb, b.Provider
            }
            rec.Fields[f] = ChosenField{Value: chosen.Value, Unit: chosen.Unit, Source: src}

            rd := relDiff(va.Value, vb.Value)
            if rd > Tolerance || signMismatch(va.Value, vb.Value) {
                rec.Discrepancies = append(rec.Discrepancies, Discrepancy{
                    Field:   f,
                    Values:  map[string]float64{a.Provider: va.Value, b.Provider: vb.Value},
                    RelDiff: rd,
                    Chosen:  src,
                })
            }
        case oka:
            rec.Fields[f] = ChosenField{Value: va.Value, Unit: va.Unit, Source: a.Provider}
        case okb:
            rec.Fields[f] = ChosenField{Value: vb.Value, Unit: vb.Unit, Source: b.Provider}
        }
    }

    for _, fe := range []*provider.FetchError{errA, errB} {
        if fe != nil {
            rec.Errors = append(rec.Errors, ProviderError{Provider: fe.Provider, Kind: fe.Kind, Message: fe.Msg})
        }
    }

    rec.Quality = deriveQuality(rec, errA, errB)
    return rec
}

// primaryProvider picks which provider's value wins for a field when
// both report it: providerA (the structured market API) for market
// fields, providerB (the scraped fundamentals page) for valuation
// fields.
func primaryProvider(f Field, providerA, providerB string) string {
    if ClassOf(f) == ClassMarket {
        return providerA
    }
    return providerB
}

func relDiff(a, b float64) float64 {
    den := math.Max(math.Max(math.Abs(a), math.Abs(b)), epsilon)
    return math.Abs(a-b) / den
}

func signMismatch(a, b float64) bool { return a*b < 0 }

func deriveQuality(rec UnifiedRecord, errA, errB *provider.FetchError) Quality {
    bothFailed := errA != nil && errB != nil
    if bothFailed || len(rec.Fields) < MinViableFields {
        return QualityDegraded
    }
    if errA != nil || errB != nil || len(rec.Discrepancies) > 0 {
        return QualityPartial
    }
    return QualityOK
}
