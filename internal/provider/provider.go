package provider

import (
    "context"
    "errors"
    "fmt"
    "time"
)

// RawRecord is a provider-specific fundamentals snapshot for one ticker.
// Field names and value formatting are the provider's own; mapping into
// the canonical schema happens in internal/fundamentals. A RawRecord is
// never mutated after the adapter returns it.
type RawRecord struct {
    Ticker    string            `json:"ticker"`
    Provider  string            `json:"provider"`
    Fields    map[string]string `json:"fields"`
    FetchedAt time.Time         `json:"fetched_at"`
}

type Provider interface {
    Name() string
    Fetch(ctx context.Context, ticker string) (RawRecord, error)
}

// ErrKind classifies adapter failures.
type ErrKind string

const (
    ErrNotFound    ErrKind = "NOT_FOUND"
    ErrTransport   ErrKind = "TRANSPORT"
    ErrParse       ErrKind = "PARSE"
    ErrRateLimited ErrKind = "RATE_LIMITED"
)

// FetchError is the only error an adapter lets past its boundary.
// Transport faults, bad payloads and unknown tickers all arrive here as
// data; nothing panics across the adapter boundary.
type FetchError struct {
    Provider string
    Kind     ErrKind
    Msg      string
    Err      error // optional cause
}

func (e *FetchError) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Kind, e.Msg, e.Err)
    }
    return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

func NewFetchError(providerName string, kind ErrKind, msg string, cause error) *FetchError {
    return &FetchError{Provider: providerName, Kind: kind, Msg: msg, Err: cause}
}

// AsFetchError coerces err into a *FetchError. Errors of any other type
// (context deadlines included) are wrapped as TRANSPORT, which keeps the
// adapter contract total for decorators and the engine.
func AsFetchError(providerName string, err error) *FetchError {
    var fe *FetchError
    if errors.As(err, &fe) {
        return fe
    }
    return &FetchError{Provider: providerName, Kind: ErrTransport, Msg: "request failed", Err: err}
}
