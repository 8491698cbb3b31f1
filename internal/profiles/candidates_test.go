package profiles

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spigell/mentor-matcher/internal/matching"
)

func pool(ids ...string) *Candidates {
	c := &Candidates{}
	for _, id := range ids {
		c.Items = append(c.Items, matching.CandidateProfile{ID: id, Company: "co-" + id, FieldOfStudy: "CSE"})
	}
	return c
}

func itemIDs(c *Candidates) []string {
	out := make([]string, 0, c.Len())
	for _, item := range c.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestExcludePreservesOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		field    string
		targets  []string
		left     []string
		excluded []string
	}{
		{
			name:     "by id",
			field:    CandidateIDField,
			targets:  []string{"b", "d"},
			left:     []string{"a", "c", "e"},
			excluded: []string{"b", "d"},
		},
		{
			name:     "by company",
			field:    CandidateCompanyField,
			targets:  []string{"co-a"},
			left:     []string{"b", "c", "d", "e"},
			excluded: []string{"a"},
		},
		{
			name:    "unknown targets",
			field:   CandidateIDField,
			targets: []string{"zzz"},
			left:    []string{"a", "b", "c", "d", "e"},
		},
		{
			name:  "no targets",
			field: CandidateIDField,
			left:  []string{"a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := pool("a", "b", "c", "d", "e")
			excluded := c.Exclude(tt.field, tt.targets)

			if !reflect.DeepEqual(itemIDs(c), tt.left) {
				t.Fatalf("expected %v left, got %v", tt.left, itemIDs(c))
			}
			if len(excluded) != len(tt.excluded) || (len(excluded) > 0 && !reflect.DeepEqual(excluded, tt.excluded)) {
				t.Fatalf("expected %v excluded, got %v", tt.excluded, excluded)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	base := pool("a", "b", "c")
	clone := base.Clone()
	clone.Exclude(CandidateIDField, []string{"a"})

	if !reflect.DeepEqual(itemIDs(base), []string{"a", "b", "c"}) {
		t.Fatalf("base pool changed: %v", itemIDs(base))
	}
	if !reflect.DeepEqual(itemIDs(clone), []string{"b", "c"}) {
		t.Fatalf("unexpected clone content: %v", itemIDs(clone))
	}
}

func TestExcludeIncomplete(t *testing.T) {
	t.Parallel()

	c := &Candidates{Items: []matching.CandidateProfile{
		{ID: "ok", FieldOfStudy: "CSE"},
		{ID: "", Name: "Anonymous", FieldOfStudy: "IT"},
		{ID: "empty", Name: "Blank"},
		{ID: "domain-only", Domain: "Software"},
	}}

	excluded := c.ExcludeIncomplete()
	if !reflect.DeepEqual(itemIDs(c), []string{"ok", "domain-only"}) {
		t.Fatalf("unexpected remaining candidates: %v", itemIDs(c))
	}
	if len(excluded) != 2 {
		t.Fatalf("expected 2 excluded, got %v", excluded)
	}
}

func TestFindByID(t *testing.T) {
	t.Parallel()

	c := pool("a", "b")
	found := c.FindByID("b")
	if found == nil || found != &c.Items[1] {
		t.Fatalf("expected pointer to second item, got %v", found)
	}
	if c.FindByID("missing") != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestExcludeFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")

	empty, err := GetExcludedCandidatesFromFile(path)
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(empty.Items) != 0 {
		t.Fatalf("expected no entries, got %d", len(empty.Items))
	}

	c := pool("a", "b")
	empty.Append(ToExcluded([]*matching.CandidateProfile{&c.Items[0], &c.Items[1]}))
	if err := empty.ToFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := GetExcludedCandidatesFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded.IDs(), []string{"a", "b"}) {
		t.Fatalf("unexpected ids: %v", loaded.IDs())
	}
	if loaded.Items[0].Company != "co-a" {
		t.Fatalf("expected company to survive round trip, got %q", loaded.Items[0].Company)
	}

	// rewriting a shorter list must not leave trailing bytes behind
	loaded.Items = loaded.Items[:1]
	if err := loaded.ToFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := GetExcludedCandidatesFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(again.IDs(), []string{"a"}) {
		t.Fatalf("unexpected ids after rewrite: %v", again.IDs())
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	name, err := DumpToTmpFile(pool("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := Decode(data, ".json")
	if err != nil {
		t.Fatalf("dump is not a readable pool: %v", err)
	}
	if !reflect.DeepEqual(itemIDs(decoded), []string{"a"}) {
		t.Fatalf("unexpected dump content: %v", itemIDs(decoded))
	}
}

func TestReportByCompany(t *testing.T) {
	t.Parallel()

	c := &Candidates{Items: []matching.CandidateProfile{
		{ID: "1", Name: "A", Company: "Google"},
		{ID: "2", Name: "B", Company: "Google"},
		{ID: "3", Name: "C"},
	}}

	report := c.ReportByCompany()
	if len(report["Google"]) != 2 {
		t.Fatalf("expected two Google entries, got %d", len(report["Google"]))
	}
	if report["unknown"][0]["id"] != "3" {
		t.Fatalf("expected candidate without company under unknown")
	}
}
