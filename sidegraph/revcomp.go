package sidegraph

// revCompTable maps an ASCII base to its complement. 'A'/'a' becomes 'T',
// 'C'/'c' becomes 'G', 'G'/'g' becomes 'C', 'T'/'t' becomes 'A'; everything
// else becomes 'N'.
var revCompTable = func() (t [256]byte) {
	for i := range t {
		t[i] = 'N'
	}
	for _, p := range [...][2]byte{{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}} {
		t[p[0]] = p[1]
		t[p[0]+'a'-'A'] = p[1]
	}
	return
}()

// ReverseComplementInplace reverse-complements the ASCII bases in seq.
func ReverseComplementInplace(seq []byte) {
	n := len(seq)
	half := n >> 1
	for idx, invIdx := 0, n-1; idx != half; idx, invIdx = idx+1, invIdx-1 {
		seq[idx], seq[invIdx] = revCompTable[seq[invIdx]], revCompTable[seq[idx]]
	}
	if n&1 == 1 {
		seq[half] = revCompTable[seq[half]]
	}
}

// ReverseComplement returns the reverse complement of seq.
func ReverseComplement(seq string) string {
	b := []byte(seq)
	ReverseComplementInplace(b)
	return string(b)
}
