package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected passthrough, got %d", got)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected zero offset for defaults, got %d", got)
	}
}

func TestBuild(t *testing.T) {
	page := Build(Params{Page: 2, Limit: 10}, 25)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Page != 2 || page.Limit != 10 || page.Total != 25 {
		t.Fatalf("unexpected page metadata: %+v", page)
	}

	empty := Build(Params{}, 0)
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 pages for empty set, got %d", empty.TotalPages)
	}
}
