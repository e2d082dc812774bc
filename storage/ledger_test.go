package storage

import (
	"context"
	"testing"
)

func TestLedger_AppendAndHistory(t *testing.T) {
	ctx := context.Background()
	l, err := NewLedgerMemory()
	if err != nil {
		t.Fatalf("NewLedgerMemory: %v", err)
	}

	for _, rec := range []Record{
		{Endpoint: "csvtest", Day: "080725", Status: StatusFailed, ErrorKind: "input_not_found"},
		{Endpoint: "txttest", Day: "080725", Status: StatusSuccess, Records: 5},
		{Endpoint: "csvtest", Day: "080725", Status: StatusSuccess, Records: 3, SizeBytes: 120},
	} {
		got, err := l.Append(ctx, rec)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if got.ID == "" {
			t.Error("Append did not assign an id")
		}
	}

	hist, err := l.History(ctx, "csvtest", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("History returned %d records, want 2", len(hist))
	}
	if hist[0].Status != StatusSuccess || hist[0].Records != 3 || hist[0].SizeBytes != 120 {
		t.Errorf("newest record = %+v", hist[0])
	}
	if hist[1].ErrorKind != "input_not_found" {
		t.Errorf("oldest record = %+v", hist[1])
	}

	limited, err := l.History(ctx, "csvtest", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("History(limit 1) = %v, %v", limited, err)
	}
}

func TestLedger_HistoryEmpty(t *testing.T) {
	l, err := NewLedgerMemory()
	if err != nil {
		t.Fatal(err)
	}
	hist, err := l.History(context.Background(), "csvtest", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("expected no records, got %d", len(hist))
	}
}
