package schedulerapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "appointment_monitor/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dateRangeJSON = `[
		{"active":1,"total":1,"pending":0,"conflicts":0,"duration":10,"timestamp":"2025-01-01T10:00","remote":false},
		{"active":0,"total":1,"pending":0,"conflicts":0,"duration":10,"timestamp":"2025-01-02T09:00","remote":false}
	]`
	soonestJSON = `[
		{"locationId":5140,"startTimestamp":"2025-02-03T08:00","endTimestamp":"2025-02-03T08:10","active":true,"duration":10,"remoteInd":false},
		{"locationId":5140,"startTimestamp":"2025-02-04T08:00","endTimestamp":"2025-02-04T08:10","active":false,"duration":10,"remoteInd":false}
	]`
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip .
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewTestClient returns a Client whose transport never leaves the process
func NewTestClient(fn RoundTripFunc) *Client {
	return NewClientWithHTTP("https://scheduler.test/schedulerapi", &http.Client{Transport: fn}, nil)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestClient_SlotsURL(t *testing.T) {
	c := NewClientWithHTTP("https://ttp.cbp.dhs.gov/schedulerapi", http.DefaultClient, nil)

	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "Date range",
			query: Query{LocationID: 5140, Limit: 3, StartDate: "2025-01-01", EndDate: "2025-01-31"},
			want:  "https://ttp.cbp.dhs.gov/schedulerapi/locations/5140/slots?startTimestamp=2025-01-01T00:00:00&endTimestamp=2025-01-31T23:59:59",
		},
		{
			name:  "Missing end date falls back to start date",
			query: Query{LocationID: 5140, StartDate: "2025-01-01"},
			want:  "https://ttp.cbp.dhs.gov/schedulerapi/locations/5140/slots?startTimestamp=2025-01-01T00:00:00&endTimestamp=2025-01-01T23:59:59",
		},
		{
			name:  "Invalid end date falls back to start date",
			query: Query{LocationID: 5140, StartDate: "2025-01-01", EndDate: "2025-02-30"},
			want:  "https://ttp.cbp.dhs.gov/schedulerapi/locations/5140/slots?startTimestamp=2025-01-01T00:00:00&endTimestamp=2025-01-01T23:59:59",
		},
		{
			name:  "No dates uses soonest",
			query: Query{LocationID: 5020, Limit: 5},
			want:  "https://ttp.cbp.dhs.gov/schedulerapi/slots?orderBy=soonest&limit=5&locationId=5020",
		},
		{
			name:  "Invalid start date uses soonest",
			query: Query{LocationID: 5020, Limit: 1, StartDate: "2025-13-40", EndDate: "2025-01-31"},
			want:  "https://ttp.cbp.dhs.gov/schedulerapi/slots?orderBy=soonest&limit=1&locationId=5020",
		},
		{
			name:  "Zero limit defaults to one",
			query: Query{LocationID: 5020},
			want:  "https://ttp.cbp.dhs.gov/schedulerapi/slots?orderBy=soonest&limit=1&locationId=5020",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.SlotsURL(tt.query))
		})
	}
}

func TestClient_FetchSlots_DateRange(t *testing.T) {
	var gotPath, gotQuery string
	c := NewTestClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotQuery = req.URL.RawQuery
		return jsonResponse(http.StatusOK, dateRangeJSON), nil
	})

	slots, err := c.FetchSlots(context.Background(), Query{LocationID: 5140, StartDate: "2025-01-01", EndDate: "2025-01-02"})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01T10:00"}, slots)
	assert.Equal(t, "/schedulerapi/locations/5140/slots", gotPath)
	assert.Equal(t, "startTimestamp=2025-01-01T00:00:00&endTimestamp=2025-01-02T23:59:59", gotQuery)
}

func TestClient_FetchSlots_InvalidStartDateQueriesSoonest(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := NewTestClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotQuery = req.URL.Query()
		return jsonResponse(http.StatusOK, soonestJSON), nil
	})

	slots, err := c.FetchSlots(context.Background(), Query{LocationID: 5140, Limit: 2, StartDate: "2025-13-40"})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-03T08:00"}, slots)
	assert.Equal(t, "/schedulerapi/slots", gotPath)
	assert.Equal(t, []string{"soonest"}, gotQuery["orderBy"])
	assert.Equal(t, []string{"2"}, gotQuery["limit"])
	assert.Equal(t, []string{"5140"}, gotQuery["locationId"])
}

func TestClient_FetchSlots_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fn       RoundTripFunc
		wantCode error
	}{
		{
			name: "Non-200 status",
			fn: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusServiceUnavailable, `{"error":"down"}`), nil
			},
			wantCode: apperrors.ErrFetchStatus,
		},
		{
			name: "Transport failure",
			fn: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("connection reset by peer")
			},
			wantCode: apperrors.ErrFetchTransport,
		},
		{
			name: "Malformed body",
			fn: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"not":"an array"`), nil
			},
			wantCode: apperrors.ErrFetchDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTestClient(tt.fn)

			slots, err := c.FetchSlots(context.Background(), Query{LocationID: 1})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantCode)
			assert.Empty(t, slots)
		})
	}
}

func TestClient_FetchSlots_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, nil)

	_, err := c.FetchSlots(context.Background(), Query{LocationID: 1})

	assert.ErrorIs(t, err, apperrors.ErrFetchTransport)
}

func TestClient_FetchLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations/", r.URL.Path)
		assert.Equal(t, "Global Entry", r.URL.Query().Get("serviceName"))
		assert.Equal(t, "true", r.URL.Query().Get("operational"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":5140,"name":"JFK International Global Entry EC","shortName":"JFK"},{"id":5446,"name":"San Francisco Global Entry Enrollment Center"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)

	locations, err := c.FetchLocations(context.Background(), "Global Entry")

	require.NoError(t, err)
	assert.Equal(t, []Location{
		{ID: 5140, Name: "JFK International Global Entry EC"},
		{ID: 5446, Name: "San Francisco Global Entry Enrollment Center"},
	}, locations)
}
