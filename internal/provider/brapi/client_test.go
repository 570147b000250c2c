package brapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"investreporter/internal/provider"
	brapi "investreporter/internal/provider/brapi"
)

var mockQuoteResponse = map[string]any{
	"results": []map[string]any{
		{
			"symbol":                   "BBAS3",
			"regularMarketPrice":       21.31,
			"marketCap":                122124000000,
			"fiftyTwoWeekHigh":         29.18,
			"fiftyTwoWeekLow":          18.75,
			"averageDailyVolume3Month": 31850000,
			"priceEarnings":            "5.65",
			"earningsPerShare":         3.77,
		},
	},
}

func respondJSON(t *testing.T, status int, payload any) *http.Response {
	t.Helper()

	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(payload))

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(buffer),
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := brapi.NewClient("test")
	require.NoErrorf(t, err, "unexpected error: %v", err)
	require.NotNilf(t, client, "unexpected nil client")
}

func TestGetQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Contains(t, req.URL.Path, "/quote/BBAS3")
			require.Equal(t, "test-token", req.URL.Query().Get("token"))

			return respondJSON(t, http.StatusOK, mockQuoteResponse), nil
		}).
		Times(1)

	// Arrange: setup a new brapi client
	client, err := brapi.NewClient("test-token", brapi.WithHTTPClient(httpClient))
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetQuote
	quote, err := client.GetQuote(t.Context(), "BBAS3")
	require.NoError(t, err)

	// Assert: numbers decode whether brapi serves them as numbers or strings
	require.Equal(t, "BBAS3", quote.Symbol)
	require.InEpsilon(t, 21.31, float64(*quote.RegularMarketPrice), 0.0001)
	require.InEpsilon(t, 5.65, float64(*quote.PriceEarnings), 0.0001)
}

func TestGetQuote_WithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())

			return respondJSON(t, http.StatusOK, mockQuoteResponse), nil
		}).
		Times(1)

	// Arrange: create a new client with an overridden base URL.
	client, err := brapi.NewClient("test", brapi.WithHTTPClient(httpClient), brapi.WithBaseURL(baseURL))
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetQuote with the overridden base URL.
	_, err = client.GetQuote(t.Context(), "BBAS3")
	require.NoError(t, err)
}

func TestGetQuote_WithHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))

			return respondJSON(t, http.StatusOK, mockQuoteResponse), nil
		}).
		Times(1)

	// Arrange: create a new client with a custom header.
	client, err := brapi.NewClient("test", brapi.WithHTTPClient(httpClient), brapi.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetQuote with the custom header.
	_, err = client.GetQuote(t.Context(), "BBAS3")
	require.NoError(t, err)
}

func TestGetQuote_StatusCodeClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		kind   provider.ErrKind
	}{
		{"not found", http.StatusNotFound, provider.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, provider.ErrRateLimited},
		{"payment required", http.StatusPaymentRequired, provider.ErrRateLimited},
		{"too many requests", http.StatusTooManyRequests, provider.ErrRateLimited},
		{"server error", http.StatusInternalServerError, provider.ErrTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange: stub the Do method with the status under test
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					return respondJSON(t, tc.status, map[string]any{}), nil
				}).
				Times(1)

			client, err := brapi.NewClient("test", brapi.WithHTTPClient(httpClient))
			require.NoError(t, err)

			// Act: call GetQuote
			_, err = client.GetQuote(t.Context(), "BBAS3")
			require.Error(t, err)

			// Assert: the failure carries the expected kind
			var fe *provider.FetchError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tc.kind, fe.Kind)
			require.Equal(t, brapi.Name, fe.Provider)
		})
	}
}

func TestGetQuote_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock http client that fails outright
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}).
		Times(1)

	client, err := brapi.NewClient("test", brapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetQuote
	_, err = client.GetQuote(t.Context(), "BBAS3")

	// Assert: transport failures are classified as such
	var fe *provider.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, provider.ErrTransport, fe.Kind)
}

func TestGetQuote_ErrDecodingResponse(t *testing.T) {
	t.Parallel()

	// Arrange: stub the Do method with a body that is not JSON
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("<html>maintenance</html>")),
			}, nil
		}).
		Times(1)

	client, err := brapi.NewClient("test", brapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetQuote
	_, err = client.GetQuote(t.Context(), "BBAS3")

	// Assert: malformed payloads are parse failures
	var fe *provider.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, provider.ErrParse, fe.Kind)
}

func TestGetQuote_EmptyResults(t *testing.T) {
	t.Parallel()

	// Arrange: stub the Do method with an empty results array
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return respondJSON(t, http.StatusOK, map[string]any{"results": []any{}}), nil
		}).
		Times(1)

	client, err := brapi.NewClient("test", brapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetQuote
	_, err = client.GetQuote(t.Context(), "ZZZZ9")

	// Assert: an empty payload means the ticker does not exist upstream
	var fe *provider.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, provider.ErrNotFound, fe.Kind)
}
