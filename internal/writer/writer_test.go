package writer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/parquet-go/parquet-go"

	"github.com/fhir-analytics/ingest-backend/internal/faults"
	"github.com/fhir-analytics/ingest-backend/internal/storage"
	"github.com/fhir-analytics/ingest-backend/internal/types"
)

func strPtr(s string) *string { return &s }

func sampleRows() []types.OutputRow {
	sc := int32(400)
	return []types.OutputRow{
		{
			S3Filename:               strPtr("bundle-001.json"),
			Source:                   strPtr("lca-persist"),
			PatientID:                strPtr("PT-001"),
			StatusCode:               &sc,
			OperationOutcomeSeverity: strPtr("error"),
			OperationOutcomeCode:     strPtr("invalid"),
			IngestDate:               "2025-12-09",
			Hour:                     "18",
		},
		{
			S3Filename: strPtr("bundle-001.json"),
			Source:     strPtr("lca-persist"),
			PatientID:  strPtr("PT-002"),
			IngestDate: "2025-12-09",
			Hour:       "18",
		},
	}
}

func TestWriteAndReadBack(t *testing.T) {
	store := storage.NewMemoryStore()
	rows := sampleRows()

	written, err := New(store).Write(rows, "analytics", "data/source=lca-persist/f.parquet")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !written {
		t.Fatal("expected a write on an absent target")
	}

	body := store.Object("analytics", "data/source=lca-persist/f.parquet")
	if body == nil {
		t.Fatal("no object stored")
	}
	readBack, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(readBack) != len(rows) {
		t.Fatalf("row count changed on round trip: wrote %d, read %d", len(rows), len(readBack))
	}
	if readBack[0].PatientID == nil || *readBack[0].PatientID != "PT-001" {
		t.Errorf("patientId lost on round trip: %+v", readBack[0])
	}
	if readBack[0].StatusCode == nil || *readBack[0].StatusCode != 400 {
		t.Errorf("statusCode lost on round trip: %+v", readBack[0])
	}
	if readBack[1].StatusCode != nil {
		t.Errorf("null statusCode materialized on round trip: %v", *readBack[1].StatusCode)
	}

	// Partition columns are path-encoded, never part of the written body.
	if readBack[0].IngestDate != "" || readBack[0].Hour != "" {
		t.Errorf("partition columns leaked into the parquet body: %+v", readBack[0])
	}
}

func TestWriteSkipsExistingTarget(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Seed("analytics", "data/f.parquet", []byte("prior content"))

	written, err := New(store).Write(sampleRows(), "analytics", "data/f.parquet")
	if err != nil {
		t.Fatalf("Write on existing target should not error: %v", err)
	}
	if written {
		t.Error("expected skip, got write")
	}
	if store.PutCalls != 0 {
		t.Errorf("put attempted %d times despite existing target", store.PutCalls)
	}
	if string(store.Object("analytics", "data/f.parquet")) != "prior content" {
		t.Error("existing object was overwritten")
	}
}

func TestWriteProceedsOnHeadAnomaly(t *testing.T) {
	store := storage.NewMemoryStore()
	store.HeadErr = errors.New("access denied")

	written, err := New(store).Write(sampleRows(), "analytics", "data/f.parquet")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !written {
		t.Error("an indeterminate existence check must still attempt the write")
	}
}

func TestWriteFailureKind(t *testing.T) {
	store := storage.NewMemoryStore()
	store.PutErr = errors.New("slow down")

	_, err := New(store).Write(sampleRows(), "analytics", "data/f.parquet")
	if faults.KindOf(err) != faults.Write {
		t.Errorf("kind = %s, want %s (err: %v)", faults.KindOf(err), faults.Write, err)
	}
}

func TestSchemaIsTheFixedColumnSet(t *testing.T) {
	fields := parquet.SchemaOf(types.OutputRow{}).Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name())
	}
	if diff := cmp.Diff(types.OutputColumns, names); diff != "" {
		t.Errorf("written column set drifted from the fixed schema (-want +got):\n%s", diff)
	}
}
