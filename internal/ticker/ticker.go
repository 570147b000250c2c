// Package ticker validates B3 ticker symbols.
package ticker

import (
    "errors"
    "fmt"
    "regexp"
    "strings"
)

// ErrInvalid is returned for input that does not parse as a B3 ticker.
var ErrInvalid = errors.New("invalid ticker")

// B3 symbols are 4 letters plus a 1-2 digit type/series suffix
// (PETR4, BBAS3, BBDC11).
var b3Pattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}$`)

// Parse normalizes raw input into a canonical uppercase B3 symbol.
// A trailing ".SA" exchange suffix is accepted and stripped. Anything
// that does not match the B3 convention is rejected with ErrInvalid.
func Parse(raw string) (string, error) {
    s := strings.ToUpper(strings.TrimSpace(raw))
    s = strings.TrimSuffix(s, ".SA")
    if s == "" {
        return "", fmt.Errorf("%w: empty symbol", ErrInvalid)
    }
    if !b3Pattern.MatchString(s) {
        return "", fmt.Errorf("%w: %q does not match the B3 convention (4 letters + 1-2 digits)", ErrInvalid, raw)
    }
    return s, nil
}

// IsFII reports whether the symbol is a real-estate fund (FII). B3 lists
// FIIs with the "11" suffix; providers serve them from a different path.
func IsFII(symbol string) bool {
    return strings.HasSuffix(symbol, "11")
}
