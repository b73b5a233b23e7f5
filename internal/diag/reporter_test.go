package diag

import (
	"testing"

	"provel/internal/source"
)

func TestBagReporterCollects(t *testing.T) {
	bag := NewBag(10)
	r := BagReporter{Bag: bag}
	span := source.Span{File: 1, Start: 5, End: 9}
	r.Report(RunBadReturnType, SevError, span, "entry point must not return a value", nil)

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	got := bag.Items()[0]
	if got.Code != RunBadReturnType || got.Severity != SevError {
		t.Fatalf("unexpected diagnostic: %+v", got)
	}
	if got.Primary != span {
		t.Fatalf("primary span = %v, want %v", got.Primary, span)
	}
}

func TestBagReporterNilBag(t *testing.T) {
	r := BagReporter{}
	r.Report(RunGenericParams, SevError, source.Span{}, "ignored", nil)
}

func TestNopReporterDiscards(t *testing.T) {
	var r Reporter = NopReporter{}
	r.Report(RunBadParamCount, SevError, source.Span{}, "discarded", nil)
}

func TestReportAll(t *testing.T) {
	bag := NewBag(10)
	diags := []Diagnostic{
		NewError(RunBadInputType, source.Span{File: 1, Start: 0, End: 4}, "first"),
		New(SevWarning, RunBadOutputType, source.Span{File: 1, Start: 6, End: 8}, "second"),
	}
	ReportAll(BagReporter{Bag: bag}, diags)

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if bag.Items()[0].Message != "first" || bag.Items()[1].Message != "second" {
		t.Fatalf("report order not preserved: %+v", bag.Items())
	}
}
