package search

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilter_Blank(t *testing.T) {
	for _, q := range []string{"", "   "} {
		if f := Filter(q, "name"); len(f) != 0 {
			t.Errorf("Filter(%q) = %v, want empty", q, f)
		}
	}
	if f := Filter("acme"); len(f) != 0 {
		t.Errorf("no fields should give empty filter, got %v", f)
	}
}

func TestFilter_SingleField(t *testing.T) {
	f := Filter(" acme ", "business_name")
	rx, ok := f["business_name"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on business_name, got %v", f)
	}
	if rx.Pattern != "acme" || rx.Options != "i" {
		t.Errorf("regex = %+v", rx)
	}
}

func TestFilter_EscapesAndOrs(t *testing.T) {
	f := Filter("a.b*(c)", "business_name", "contact_name")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or of 2, got %v", f)
	}
	rx := or[1].(bson.M)["contact_name"].(primitive.Regex)
	if rx.Pattern != `a\.b\*\(c\)` {
		t.Errorf("pattern = %q", rx.Pattern)
	}
}

func TestLooksLikeEmail(t *testing.T) {
	tests := map[string]bool{
		"ops@acme.com": true,
		"@acme":        true,
		"acme traders": false,
		"":             false,
	}
	for q, want := range tests {
		if got := LooksLikeEmail(q); got != want {
			t.Errorf("LooksLikeEmail(%q) = %v, want %v", q, got, want)
		}
	}
}
