package investidor10

import (
    "encoding/json"
    "io"
    "regexp"
    "strings"

    "github.com/PuerkitoBio/goquery"
)

// Raw field labels produced by Extract. Values keep the site's pt-BR
// formatting ("32,57", "12,5%", "R$ 650,41 B"); parsing into canonical
// units happens in internal/fundamentals.
const (
    RawPrice         = "Preço"
    RawPE            = "P/L"
    RawPB            = "P/VP"
    RawDividendYield = "Dividend Yield"
    RawROE           = "ROE"
    RawMarketValue   = "Valor de Mercado"
    RawDividends12m  = "Dividendos (12m)"
    RawDailyLiquidity = "Liquidez Diária"
    RawVariation12m  = "Variação (12M)"
)

// The indicator values live partly in FAQPage ld+json blocks and partly
// in the rendered page text, phrased as prose ("está cotada a R$ 32,57",
// "P/L de 5,65"). The extraction mirrors that phrasing.
var (
    rePrice       = regexp.MustCompile(`(?is)está\s+cotad[oa]\s+a\s+R\$\s*([0-9\.]+,[0-9]{2})`)
    reVariation   = regexp.MustCompile(`(?is)variaç[aã]o\s+de\s*([\-\+]?[0-9\.]+,[0-9]{1,2}|[\-\+]?[0-9\.]+)\s*%`)
    rePE          = regexp.MustCompile(`(?is)P\s*/\s*L\s+de\s*([0-9\.]+,[0-9]{1,2}|[0-9\.]+)`)
    rePB          = regexp.MustCompile(`(?is)P\s*/\s*VP\s+de\s*([0-9\.]+,[0-9]{1,2}|[0-9\.]+)`)
    reYield       = regexp.MustCompile(`(?is)Dividend\s*Yield[^0-9%]*([0-9\.]+,[0-9]{1,2}|[0-9\.]+)\s*%`)
    reROE         = regexp.MustCompile(`(?is)ROE[^0-9%\-]*([\-\+]?[0-9\.]+,[0-9]{1,2}|[\-\+]?[0-9\.]+)\s*%`)
    reMarketValue = regexp.MustCompile(`(?is)valor\s+de\s+mercado\s+(?:de|é\s+de)\s*R\$\s*([0-9\.]+,?[0-9]*)\s*(mil|[KMBT]|mi|bi|tri)?`)
    reDividends   = regexp.MustCompile(`(?is)Nos\s+últimos\s+12\s+meses,\s+distribuiu\s+um\s+total\s+de\s*R\$\s*([0-9\.]+,[0-9]{2})`)
    reLiquidity   = regexp.MustCompile(`(?is)Liquidez\s*Di[áa]ria\s*R\$\s*([0-9\.]+,[0-9]{2})\s*([MK])`)
)

// Extract pulls raw indicator values out of a ticker page. Missing
// indicators are simply absent from the result; only a document that
// cannot be parsed at all is an error.
func Extract(r io.Reader) (map[string]string, error) {
    doc, err := goquery.NewDocumentFromReader(r)
    if err != nil {
        return nil, err
    }

    var faqTexts []string
    doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
        txt := strings.TrimSpace(s.Text())
        if txt == "" { return }
        faqTexts = append(faqTexts, faqAnswers(txt)...)
    })

    pageText := doc.Text()
    combined := pageText
    if len(faqTexts) > 0 {
        combined = strings.Join(faqTexts, "\n") + "\n" + pageText
    }

    raw := make(map[string]string)
    get := func(label string, re *regexp.Regexp, suffix string) {
        if m := re.FindStringSubmatch(combined); m != nil {
            v := strings.TrimSpace(m[1])
            if v != "" { raw[label] = v + suffix }
        }
    }

    get(RawPrice, rePrice, "")
    get(RawVariation12m, reVariation, "%")
    get(RawPE, rePE, "")
    get(RawPB, rePB, "")
    get(RawDividendYield, reYield, "%")
    get(RawROE, reROE, "%")
    get(RawDividends12m, reDividends, "")
    if m := reMarketValue.FindStringSubmatch(combined); m != nil {
        v := strings.TrimSpace(m[1])
        if v != "" {
            raw[RawMarketValue] = strings.TrimSpace("R$ " + v + " " + strings.TrimSpace(m[2]))
        }
    }
    if m := reLiquidity.FindStringSubmatch(combined); m != nil {
        raw[RawDailyLiquidity] = "R$ " + m[1] + " " + m[2]
    }

    return raw, nil
}

// faqAnswers collects acceptedAnswer texts from FAQPage ld+json blocks.
// Blocks that are not valid JSON or not FAQPage objects are skipped.
func faqAnswers(txt string) []string {
    var data any
    if err := json.Unmarshal([]byte(txt), &data); err != nil {
        return nil
    }

    var objs []map[string]any
    switch d := data.(type) {
    case map[string]any:
        objs = append(objs, d)
    case []any:
        for _, o := range d {
            if m, ok := o.(map[string]any); ok { objs = append(objs, m) }
        }
    }

    var out []string
    for _, obj := range objs {
        if t, _ := obj["@type"].(string); t != "FAQPage" { continue }
        entities, _ := obj["mainEntity"].([]any)
        for _, q := range entities {
            qm, ok := q.(map[string]any)
            if !ok { continue }
            ans, ok := qm["acceptedAnswer"].(map[string]any)
            if !ok { continue }
            if text, ok := ans["text"].(string); ok && strings.TrimSpace(text) != "" {
                out = append(out, text)
            }
        }
    }
    return out
}
