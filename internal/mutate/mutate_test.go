package mutate

import (
	"bytes"
	"strings"
	"testing"
)

func slotTotalLen(slots [][]byte) int {
	n := 0
	for _, s := range slots {
		n += len(s)
	}
	return n
}

func TestInjectionPreservesSlotCountAndLengthensOne(t *testing.T) {
	rng := NewRand(1, 2)
	inj := NewInjection()

	slots := [][]byte{[]byte("ST: ssdp:all"), []byte("MX: 2"), []byte("UA: foo")}
	out := inj.Mutate(rng, slots)

	if len(out) != len(slots) {
		t.Fatalf("expected %d slots, got %d", len(slots), len(out))
	}

	longer := 0
	for i := range slots {
		if len(out[i]) > len(slots[i]) {
			longer++
			if !bytes.HasPrefix(out[i], slots[i]) {
				t.Fatalf("expected slot %d to retain its original prefix", i)
			}
			if !bytes.Contains(out[i], []byte("reboot")) {
				t.Fatalf("expected slot %d to contain the injected command", i)
			}
		} else if len(out[i]) != len(slots[i]) {
			t.Fatalf("slot %d shrank unexpectedly", i)
		}
	}
	if longer != 1 {
		t.Fatalf("expected exactly one slot to lengthen, got %d", longer)
	}
}

func TestInjectionEnclosureStartsPayload(t *testing.T) {
	// Seed chosen so the test only checks the structural property, not
	// a specific enclosure — all valid enclosures start with "", "`",
	// "$(", ";" or "|".
	rng := NewRand(42, 7)
	inj := NewInjection()
	slots := [][]byte{[]byte("ST: ssdp:all")}
	out := inj.Mutate(rng, slots)

	suffix := out[0][len(slots[0]):]
	valid := []string{"", "`", "$(", ";", "|"}
	ok := false
	for _, v := range valid {
		if strings.HasPrefix(string(suffix), v) {
			ok = true
			break
		}
	}
	if !ok {
		t.Fatalf("injected suffix %q did not start with a known enclosure", suffix)
	}
	if !strings.Contains(string(suffix), "reboot") {
		t.Fatalf("injected suffix %q missing reboot command", suffix)
	}
}

func TestOverflowPreservesSlotCount(t *testing.T) {
	rng := NewRand(3, 4)
	ov := NewOverflow()

	slots := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc"), []byte("dddd")}
	out := ov.Mutate(rng, slots)

	if len(out) != len(slots) {
		t.Fatalf("expected %d slots, got %d", len(slots), len(out))
	}

	changed := 0
	for i := range slots {
		if !bytes.Equal(out[i], slots[i]) {
			changed++
			for _, b := range out[i] {
				if b != 'A' {
					t.Fatalf("slot %d contains non-fill byte %q", i, b)
				}
			}
		}
	}
	if changed != 1 {
		t.Fatalf("expected exactly one slot changed, got %d", changed)
	}
}

func TestOverflowLengthNearBoundaries(t *testing.T) {
	ov := NewOverflow()
	rng := NewRand(9, 9)

	for i := 0; i < 200; i++ {
		l := ov.length(rng)
		found := false
		for _, b := range ov.Boundaries {
			if l >= b-2 && l <= b+2 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("length %d not within 2 of any boundary", l)
		}
	}
}
