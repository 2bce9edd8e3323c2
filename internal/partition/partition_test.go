package partition

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fhir-analytics/ingest-backend/internal/types"
)

func pinClock(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := utcNow
	utcNow = func() time.Time { return fixed.UTC() }
	t.Cleanup(func() { utcNow = prev })
}

func TestDeriveFromTimestamp(t *testing.T) {
	pinClock(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	ts := "2025-12-09T18:31:45Z"
	got := Derive("lca-persist", &ts)
	want := Key{Source: "lca-persist", Date: "2025-12-09", Hour: "18"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveFallsBackToWallClock(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 7, 5, 0, 0, time.UTC)
	pinClock(t, fixed)

	bad := "not-a-date"
	tests := []*string{nil, &bad}
	for _, ts := range tests {
		got := Derive("dxa-persist", ts)
		want := Key{Source: "dxa-persist", Date: "2026-08-28", Hour: "07"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Derive(%v) mismatch (-want +got):\n%s", ts, diff)
		}
	}
}

func TestDeriveNonUTCOffsetNormalized(t *testing.T) {
	ts := "2025-12-09T23:31:45-02:00"
	got := Derive("lca-persist", &ts)
	if got.Date != "2025-12-10" || got.Hour != "01" {
		t.Errorf("offset timestamp not converted to UTC: %+v", got)
	}
}

func TestApplyUniformValues(t *testing.T) {
	rows := make([]types.OutputRow, 3)
	key := Key{Source: "lca-persist", Date: "2025-12-09", Hour: "18"}
	rows = Apply(rows, key)
	for i, row := range rows {
		if row.Source == nil || *row.Source != "lca-persist" {
			t.Errorf("row %d source = %v", i, row.Source)
		}
		if row.IngestDate != "2025-12-09" || row.Hour != "18" {
			t.Errorf("row %d partition = %s/%s", i, row.IngestDate, row.Hour)
		}
	}
}

func TestObjectKey(t *testing.T) {
	key := Key{Source: "lca-persist", Date: "2025-12-09", Hour: "18"}

	got := ObjectKey(key, "inbound/bundle-001.json")
	want := "data/source=lca-persist/ingest_date=2025-12-09/hour=18/bundle-001.parquet"
	if got != want {
		t.Errorf("ObjectKey = %q, want %q", got, want)
	}
}

func TestObjectKeyPreservesSpaces(t *testing.T) {
	key := Key{Source: "dxa-persist", Date: "2025-12-09", Hour: "18"}
	got := ObjectKey(key, "path/to/file with spaces.json")
	if !strings.HasSuffix(got, "/file with spaces.parquet") {
		t.Errorf("spaces not preserved in %q", got)
	}
}

func TestURI(t *testing.T) {
	got := URI("fhir-ingest-analytics", "data/source=lca-persist/ingest_date=2025-12-09/hour=18/f.parquet")
	if got != "s3://fhir-ingest-analytics/data/source=lca-persist/ingest_date=2025-12-09/hour=18/f.parquet" {
		t.Errorf("URI = %q", got)
	}
}
