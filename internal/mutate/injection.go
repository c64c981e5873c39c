package mutate

// enclosure pairs the injected command can be wrapped in before the
// delimiter passes run.
var enclosures = [][2]string{
	{"", ""},
	{"`", "`"},
	{"$(", ")"},
	{";", ";"},
	{"|", ""},
}

// delimiters are appended, zero to six at a time across two passes.
var delimiters = []string{
	"", "`", ";", "\"", "'", "|", "&", "&&", ")", "\r", "\n", "%0a", "%0d",
}

// Injection extends exactly one randomly chosen slot with a command
// injection payload built from a fixed command token, a random
// enclosure pair, and zero to six random delimiters.
type Injection struct {
	Cmd []byte
}

// NewInjection builds the injection mutator with the canonical payload.
func NewInjection() *Injection {
	return &Injection{Cmd: []byte("reboot")}
}

// Mutate returns a copy of slots with one randomly chosen entry
// extended by the injection payload. The slot count is preserved.
func (i *Injection) Mutate(rng *Rand, slots [][]byte) [][]byte {
	idx := rng.IntN(len(slots))
	payload := i.payload(rng)

	out := make([][]byte, len(slots))
	copy(out, slots)

	extended := make([]byte, 0, len(slots[idx])+len(payload))
	extended = append(extended, slots[idx]...)
	extended = append(extended, payload...)
	out[idx] = extended

	return out
}

// payload wraps Cmd in a random enclosure then appends zero to six
// random delimiters, drawn as two passes of zero to three choices.
func (i *Injection) payload(rng *Rand) []byte {
	enc := enclosures[rng.IntN(len(enclosures))]

	cmd := make([]byte, 0, len(enc[0])+len(i.Cmd)+len(enc[1]))
	cmd = append(cmd, enc[0]...)
	cmd = append(cmd, i.Cmd...)
	cmd = append(cmd, enc[1]...)

	for pass := 0; pass < 2; pass++ {
		n := rng.IntN(4) // 0..3
		for j := 0; j < n; j++ {
			cmd = append(cmd, delimiters[rng.IntN(len(delimiters))]...)
		}
	}

	return cmd
}
