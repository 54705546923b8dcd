package internaldefs

import (
	"strings"
	"testing"
)

func TestCounterDefsUnique(t *testing.T) {
	seenIDs := map[uint16]bool{}
	seenNames := map[string]bool{}
	for _, def := range CounterDefs {
		if seenIDs[uint16(def.ID)] || seenNames[def.Name] {
			t.Fatalf("duplicate counter def %+v", def)
		}
		seenIDs[uint16(def.ID)] = true
		seenNames[def.Name] = true
		if !strings.HasPrefix(def.Name, "authshield_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("unexpected counter name %q", def.Name)
		}
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if len(HistogramUpperBounds)+1 != len(HistogramBoundSuffix) {
		t.Fatal("bounds and suffixes out of sync")
	}
}
