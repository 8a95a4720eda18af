package status

import (
	"strings"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	defs := []Definition{
		{Value: "backlog", Label: "Backlog", RequiresPurchaseDate: true},
		{Value: "playing", Label: "Playing", RequiresPurchaseDate: true},
		{Value: "full_clear", Label: "Full clear", RequiresPurchaseDate: true},
		{Value: "wishlist", Label: "Wishlist", RequiresPurchaseDate: false},
	}
	buckets := []BucketInfo{
		{ID: "backlog", Label: "Backlog", Color: "#6366f1"},
		{ID: "playing", Label: "Playing", Color: "#22c55e"},
	}
	r, err := NewRegistry(defs, buckets, "backlog")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestValidateNormalizesCase(t *testing.T) {
	r := newTestRegistry(t)

	got, err := r.Validate("  Playing ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "playing" {
		t.Errorf("Validate: got %q, want %q", got, "playing")
	}
}

func TestValidateFallsBackToDefault(t *testing.T) {
	r := newTestRegistry(t)

	got, err := r.Validate("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "backlog" {
		t.Errorf("Validate empty: got %q, want %q", got, "backlog")
	}
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Validate("archived")
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !strings.Contains(err.Error(), "backlog") {
		t.Errorf("error should list allowed values, got %q", err.Error())
	}
}

func TestBucketForDefaultsToOwnValue(t *testing.T) {
	r := newTestRegistry(t)

	if got := r.BucketFor("full_clear"); got != "full_clear" {
		t.Errorf("BucketFor: got %q, want %q", got, "full_clear")
	}
	if got := r.BucketFor("unknown"); got != "" {
		t.Errorf("BucketFor unknown: got %q, want empty", got)
	}
}

func TestRequiresPurchaseDate(t *testing.T) {
	r := newTestRegistry(t)

	if !r.RequiresPurchaseDate("playing") {
		t.Error("playing should require a purchase date")
	}
	if r.RequiresPurchaseDate("wishlist") {
		t.Error("wishlist should not require a purchase date")
	}
}

func TestOwnedStatusesExcludeWishlist(t *testing.T) {
	r := newTestRegistry(t)

	owned := r.OwnedStatuses()
	for _, value := range owned {
		if value == "wishlist" {
			t.Error("wishlist should not be an owned status")
		}
	}
	if len(owned) != 3 {
		t.Errorf("owned statuses: got %d, want 3", len(owned))
	}
}

func TestUndeclaredBucketGetsPlaceholderMetadata(t *testing.T) {
	r := newTestRegistry(t)

	meta := r.BucketMetadata()
	info, ok := meta["full_clear"]
	if !ok {
		t.Fatal("full_clear bucket should have placeholder metadata")
	}
	if info.Label != "Full clear" {
		t.Errorf("placeholder label: got %q, want %q", info.Label, "Full clear")
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defs := []Definition{
		{Value: "backlog"},
		{Value: "Backlog"},
	}
	if _, err := NewRegistry(defs, nil, "backlog"); err == nil {
		t.Fatal("expected error for duplicate status")
	}
}

func TestNewRegistryRejectsEmptyTable(t *testing.T) {
	if _, err := NewRegistry(nil, nil, ""); err == nil {
		t.Fatal("expected error for empty status table")
	}
}

func TestNewRegistryRejectsUnknownDefault(t *testing.T) {
	defs := []Definition{{Value: "backlog"}}
	if _, err := NewRegistry(defs, nil, "playing"); err == nil {
		t.Fatal("expected error for default status outside the table")
	}
}
