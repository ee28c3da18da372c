package worldbank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/countrystats/internal/catalog"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("https://api.example.org/v2/", "", 0)
	co2, ok := catalog.IndicatorByCode("EN.ATM.CO2E.PC")
	require.True(t, ok)

	spec := b.Build(0, co2, 2000, 2010)

	req, err := http.NewRequest(http.MethodGet, spec.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "api.example.org", req.URL.Host)
	assert.Equal(t, "/v2/country/CAN/indicator/EN.ATM.CO2E.PC", req.URL.Path)

	query := req.URL.Query()
	assert.Equal(t, "2000:2010", query.Get("date"))
	assert.Equal(t, "json", query.Get("format"))
	assert.Equal(t, "1000", query.Get("per_page"))

	assert.Equal(t, "application/json", spec.Headers.Get("Content-Type"))
	assert.Equal(t, "en-US", spec.Headers.Get("Content-Language"))
}

func TestBuilder_InvertedRangeIsPassedThrough(t *testing.T) {
	spec := NewBuilder("", "", 50).Build(1, catalog.PrimaryIndicator, 2010, 2000)

	req, err := http.NewRequest(http.MethodGet, spec.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "2010:2000", req.URL.Query().Get("date"))
	assert.Equal(t, "50", req.URL.Query().Get("per_page"))
}

func TestBuilder_PanicsOnOutOfRangeSelector(t *testing.T) {
	b := NewBuilder("", "", 0)
	assert.Panics(t, func() {
		b.Build(catalog.CountrySelector(len(catalog.Countries)), catalog.PrimaryIndicator, 2000, 2001)
	})
}

func TestClient_Fetch(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/country/CAN/indicator/AG.LND.FRST.ZS", r.URL.Path)
		assert.Equal(t, "en-US", r.Header.Get("Content-Language"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(realResponse))
	}))
	defer mockServer.Close()

	client := NewClient(5 * time.Second)
	spec := NewBuilder(mockServer.URL, "", 0).Build(0, catalog.PrimaryIndicator, 2010, 2012)

	body, err := client.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, realResponse, body)
}

func TestClient_FetchFailures(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		calls := 0
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer mockServer.Close()

		_, err := NewClient(5*time.Second).Fetch(context.Background(), RequestSpec{URL: mockServer.URL})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
		assert.Equal(t, 1, calls, "fetch must not retry")
	})

	t.Run("connection refused", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := mockServer.URL
		mockServer.Close()

		_, err := NewClient(time.Second).Fetch(context.Background(), RequestSpec{URL: url})
		assert.True(t, errors.Is(err, ErrFetch))
	})

	t.Run("timeout", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer mockServer.Close()

		_, err := NewClient(50*time.Millisecond).Fetch(context.Background(), RequestSpec{URL: mockServer.URL})
		assert.True(t, errors.Is(err, ErrFetch))
	})
}

func TestClient_NullDataIsNotAFetchFailure(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"page":1},[{"date":"2012","value":null}]]`))
	}))
	defer mockServer.Close()

	body, err := NewClient(time.Second).Fetch(context.Background(), RequestSpec{URL: mockServer.URL})
	require.NoError(t, err)

	series, err := Parse(body)
	require.NoError(t, err)
	assert.False(t, series.Has(2012))
}
