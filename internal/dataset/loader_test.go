package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosales-dashboard/internal/models"
)

const sampleCSV = `Date,Year,Month,Recession,Consumer_Confidence,Seasonality_Weight,Price,Advertising_Expenditure,Competition,GDP,Growth_Rate,unemployment_rate,Automobile_Sales,Vehicle_Type,City
1/31/1980,1980,Jan,1,108.24,0.5,27483.571,1558,7,60.223,0.01,5.4,456,Supperminicar,Georgia
2/29/1980,1980,Feb,1,98.75,0.75,24308.678,3048,4,45.986,-0.309,4.8,555.9,Supperminicar,New York
3/31/1981,1981,Mar,0,107.48,0.2,28238.443,3137,3,35.141,-0.757,3.4,620,Mediumfamilycar,New York
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	ds, err := NewLoader(Options{}, quietLogger()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, path, ds.Source())

	records := ds.All()
	assert.Equal(t, models.SalesRecord{
		Year:                   1980,
		Month:                  "Jan",
		VehicleType:            "Supperminicar",
		AutomobileSales:        456,
		AdvertisingExpenditure: 1558,
		UnemploymentRate:       5.4,
		Recession:              true,
	}, records[0])
	assert.Equal(t, "Feb", records[1].Month)
	assert.False(t, records[2].Recession)
	assert.Equal(t, "Mediumfamilycar", records[2].VehicleType)
}

func TestLoader_LoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, sampleCSV)
	}))
	defer srv.Close()

	ds, err := NewLoader(Options{}, quietLogger()).Load(context.Background(), srv.URL+"/automobile-sales.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestLoader_LoadRemoteStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewLoader(Options{}, quietLogger()).Load(context.Background(), srv.URL)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, srv.URL, loadErr.Source)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1, calls, "load must not retry")
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := NewLoader(Options{}, quietLogger()).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_InvalidData(t *testing.T) {
	header := "Year,Month,Vehicle_Type,Automobile_Sales,Advertising_Expenditure,unemployment_rate,Recession"

	tests := []struct {
		name    string
		csv     string
		wantErr error
		wantMsg string
	}{
		{name: "empty input", csv: "", wantErr: ErrEmptyDataset},
		{name: "header only", csv: header + "\n", wantErr: ErrEmptyDataset},
		{
			name:    "missing columns",
			csv:     "Year,Month,Vehicle_Type\n1980,Jan,SUV\n",
			wantErr: ErrMissingColumn,
			wantMsg: "Automobile_Sales",
		},
		{name: "non-numeric sales", csv: header + "\n1980,Jan,SUV,lots,10,5.1,0\n", wantMsg: "line 2: column Automobile_Sales"},
		{name: "fractional year", csv: header + "\n1980.5,Jan,SUV,1,10,5.1,0\n", wantMsg: "column Year"},
		{name: "bad recession flag", csv: header + "\n1980,Jan,SUV,1,10,5.1,maybe\n", wantMsg: "column Recession"},
		{name: "nan unemployment", csv: header + "\n1980,Jan,SUV,1,10,NaN,0\n", wantMsg: "column unemployment_rate"},
		{name: "ragged row", csv: header + "\n1980,Jan,SUV\n", wantMsg: "read rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), "test", strings.NewReader(tt.csv))
			require.Error(t, err)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_PreservesOrderAcrossBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString("Recession,Year,Month,Vehicle_Type,Automobile_Sales,Advertising_Expenditure,unemployment_rate\n")
	n := batchSize*3 + 17
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "0,%d,Jan,SUV,%d,1,2.5\n", 1980+i%44, i)
	}

	ds, err := Parse(context.Background(), "big", strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, n, ds.Len())

	i := 0
	ds.Each(func(r models.SalesRecord) bool {
		assert.Equal(t, float64(i), r.AutomobileSales)
		i++
		return true
	})
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, "test", strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_Snapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleCSV)
	}))
	source := srv.URL + "/sales.csv"

	loader := NewLoader(Options{CacheDir: t.TempDir()}, quietLogger())

	first, err := loader.Load(context.Background(), source)
	require.NoError(t, err)
	_, err = os.Stat(loader.snapshotPath(source))
	require.NoError(t, err, "snapshot should be written")

	srv.Close()

	second, err := loader.Load(context.Background(), source)
	require.NoError(t, err, "second load should come from the snapshot")
	assert.Equal(t, first.All(), second.All())
}

func TestLoader_SnapshotExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleCSV)
	}))
	source := srv.URL + "/sales.csv"

	loader := NewLoader(Options{CacheDir: t.TempDir(), CacheMaxAge: time.Nanosecond}, quietLogger())

	_, err := loader.Load(context.Background(), source)
	require.NoError(t, err)

	srv.Close()
	time.Sleep(time.Millisecond)

	_, err = loader.Load(context.Background(), source)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr, "expired snapshot must not be used")
}
