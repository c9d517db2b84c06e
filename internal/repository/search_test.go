package repository

import (
	"testing"

	"github.com/homescout/api/internal/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func TestBuildConditions_Empty(t *testing.T) {
	where, args := buildConditions(models.SearchFilter{})

	if where != "TRUE" {
		t.Errorf("expected TRUE for empty filter, got %q", where)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %d", len(args))
	}
}

func TestBuildConditions_CityOnly(t *testing.T) {
	filter := models.SearchFilter{City: strPtr("Toronto")}
	where, args := buildConditions(filter)

	if where != "city ILIKE $1" {
		t.Errorf("unexpected where clause: %q", where)
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
	if args[0] != "%Toronto%" {
		t.Errorf("expected wrapped pattern, got %v", args[0])
	}
}

func TestBuildConditions_AllPredicates(t *testing.T) {
	filter := models.SearchFilter{
		City:      strPtr("Ottawa"),
		MinPrice:  floatPtr(300000),
		MaxPrice:  floatPtr(800000),
		Bedrooms:  intPtr(3),
		Bathrooms: intPtr(2),
	}
	where, args := buildConditions(filter)

	expected := "city ILIKE $1 AND list_price >= $2 AND list_price <= $3 AND bedrooms = $4 AND bathrooms = $5"
	if where != expected {
		t.Errorf("unexpected where clause:\n got: %q\nwant: %q", where, expected)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if args[1] != float64(300000) || args[2] != float64(800000) {
		t.Errorf("unexpected price args: %v", args)
	}
	if args[3] != 3 || args[4] != 2 {
		t.Errorf("unexpected room args: %v", args)
	}
}

func TestBuildConditions_PlaceholdersFollowArgOrder(t *testing.T) {
	// With no city the first placeholder belongs to min price.
	filter := models.SearchFilter{
		MinPrice: floatPtr(100000),
		Bedrooms: intPtr(2),
	}
	where, args := buildConditions(filter)

	expected := "list_price >= $1 AND bedrooms = $2"
	if where != expected {
		t.Errorf("unexpected where clause: %q", where)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}

func TestBuildConditions_ValuesNeverInterpolated(t *testing.T) {
	// A hostile city value must end up as a bind argument, not query text.
	filter := models.SearchFilter{City: strPtr("x'; DROP TABLE listings; --")}
	where, args := buildConditions(filter)

	if where != "city ILIKE $1" {
		t.Errorf("filter value leaked into query text: %q", where)
	}
	if args[0] != "%x'; DROP TABLE listings; --%" {
		t.Errorf("unexpected arg: %v", args[0])
	}
}
