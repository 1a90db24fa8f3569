package model

import "testing"

func TestJobEnvelope(t *testing.T) {
	spend := 42.0
	jobs := []IngestionJob{
		NewCustomerJob(Customer{ID: "c1", Name: "Alice", Email: "a@x.io", TotalSpend: &spend}),
		NewOrderJob(Order{OrderID: "o1", CustomerID: "c1", Amount: 9.5}),
	}
	for _, job := range jobs {
		b, err := MarshalJob(job)
		if err != nil {
			t.Fatalf("MarshalJob() error = %v", err)
		}
		got, err := UnmarshalJob(b)
		if err != nil {
			t.Fatalf("UnmarshalJob() error = %v", err)
		}
		if got.Kind() != job.Kind() || got.JobID() != job.JobID() || got.RecordID() != job.RecordID() {
			t.Errorf("decoded %s job %s/%s, want %s/%s", got.Kind(), got.JobID(), got.RecordID(), job.JobID(), job.RecordID())
		}
	}

	if _, err := UnmarshalJob([]byte(`{"type":"invoice","data":{}}`)); err == nil {
		t.Error("expected error for unknown job type")
	}
}
