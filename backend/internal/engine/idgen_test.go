package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"depot-records/backend/internal/model"
)

func TestGenerator_Next(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	g := NewGenerator(NewMemoryCounter(), true)

	tests := []struct {
		kind model.EntityType
		want string
	}{
		{model.EntityJobCard, "JC-2025-0001"},
		{model.EntityJobCard, "JC-2025-0002"},
		{model.EntityNCRReport, "NCR-2025-0001"},
		{model.EntityLetter, "LTR-2025-0001"},
		{model.EntityVendor, "VEN-0001"},
	}
	for _, tt := range tests {
		got, err := g.Next(ctx, tt.kind, IDContext{At: at})
		if err != nil {
			t.Fatalf("Next(%s): %v", tt.kind, err)
		}
		if got != tt.want {
			t.Errorf("Next(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}

	got, err := g.Next(ctx, model.EntityJobCard, IDContext{At: at.Add(time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if got != "JC-2026-0001" {
		t.Errorf("new year should restart the sequence, got %q", got)
	}
}

func TestGenerator_NoYearNamespace(t *testing.T) {
	g := NewGenerator(NewMemoryCounter(), false)
	got, err := g.Next(context.Background(), model.EntityJobCard, IDContext{At: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if got != "JC-0001" {
		t.Errorf("got %q, want JC-0001", got)
	}
	if name := g.SequenceName(model.EntityJobCard, time.Now()); name != "job_card" {
		t.Errorf("SequenceName = %q", name)
	}
}

func TestGenerator_WidthGrows(t *testing.T) {
	c := NewMemoryCounter()
	c.Set("letter", 9999)
	got, err := NewGenerator(c, false).Next(context.Background(), model.EntityLetter, IDContext{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "LTR-10000" {
		t.Errorf("got %q, want LTR-10000", got)
	}
}

func TestMemoryCounter_Exhausted(t *testing.T) {
	c := NewMemoryCounter()
	c.Set("vendor", math.MaxInt64)
	if _, err := c.Next(context.Background(), "vendor"); !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("err = %v, want ErrSequenceExhausted", err)
	}
}
