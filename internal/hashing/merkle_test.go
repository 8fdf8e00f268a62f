package hashing_test

import (
	"testing"

	"github.com/agritrace/provchain/internal/hashing"
)

func TestRoot_emptyReturnsSentinel(t *testing.T) {
	want := hashing.SHA256([]byte("empty"))
	if got := hashing.Root(nil); got != want {
		t.Errorf("Root(nil) = %s, want sentinel %s", got, want)
	}
	if got := hashing.Root([]hashing.Digest{}); got != want {
		t.Errorf("Root([]) = %s, want sentinel %s", got, want)
	}
}

func TestRoot_singleLeafVerbatim(t *testing.T) {
	if got := hashing.Root([]hashing.Digest{"SKU1"}); got != "SKU1" {
		t.Errorf("Root([SKU1]) = %s, want SKU1 unchanged", got)
	}
}

func TestRoot_twoLeaves(t *testing.T) {
	a, b := hashing.Digest("leafA"), hashing.Digest("leafB")
	want := hashing.SHA256([]byte("leafAleafB"))
	if got := hashing.Root([]hashing.Digest{a, b}); got != want {
		t.Errorf("Root([a,b]) = %s, want %s", got, want)
	}
}

func TestRoot_threeLeaves_oddLeafPairsWithItself(t *testing.T) {
	a, b, c := hashing.Digest("leaf1"), hashing.Digest("leaf2"), hashing.Digest("leaf3")

	ab := hashing.SHA256([]byte("leaf1leaf2"))
	cc := hashing.SHA256([]byte("leaf3leaf3"))
	want := hashing.SHA256([]byte(string(ab) + string(cc)))

	if got := hashing.Root([]hashing.Digest{a, b, c}); got != want {
		t.Errorf("Root([a,b,c]) = %s, want %s", got, want)
	}
}

func TestRoot_fourLeaves(t *testing.T) {
	leaves := []hashing.Digest{"w", "x", "y", "z"}
	wx := hashing.SHA256([]byte("wx"))
	yz := hashing.SHA256([]byte("yz"))
	want := hashing.SHA256([]byte(string(wx) + string(yz)))
	if got := hashing.Root(leaves); got != want {
		t.Errorf("Root(4 leaves) = %s, want %s", got, want)
	}
}

func TestRoot_orderSensitive(t *testing.T) {
	ab := hashing.Root([]hashing.Digest{"leafA", "leafB"})
	ba := hashing.Root([]hashing.Digest{"leafB", "leafA"})
	if ab == ba {
		t.Error("swapping leaves did not change the root")
	}
}

func TestRoot_deterministic(t *testing.T) {
	leaves := []hashing.Digest{"l1", "l2", "l3", "l4", "l5"}
	first := hashing.Root(leaves)
	for i := 0; i < 5; i++ {
		if got := hashing.Root(leaves); got != first {
			t.Fatalf("Root not deterministic: %s vs %s", got, first)
		}
	}
}

func TestRoot_inputNotMutated(t *testing.T) {
	leaves := []hashing.Digest{"l1", "l2", "l3"}
	hashing.Root(leaves)
	if leaves[0] != "l1" || leaves[1] != "l2" || leaves[2] != "l3" {
		t.Errorf("Root mutated its input: %v", leaves)
	}
}

func TestRootStrings_matchesRoot(t *testing.T) {
	want := hashing.Root([]hashing.Digest{"s1", "s2"})
	if got := hashing.RootStrings([]string{"s1", "s2"}); got != want {
		t.Errorf("RootStrings = %s, want %s", got, want)
	}
}
