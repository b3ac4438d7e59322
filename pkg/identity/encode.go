package identity

// Alphabet is the 32-symbol encoding alphabet. Digits plus lowercase
// letters, with g, i, l and o excluded as visually ambiguous.
const Alphabet = "0123456789abcdefhjkmnqprstuvwxyz"

// EncodedWidth is ceil(64 / log2(32)): every 64-bit hash encodes to
// exactly this many symbols, zero-padded on the left.
const EncodedWidth = 13

// EncodeHash renders a 64-bit hash as a fixed-width big-endian base-32
// string over Alphabet.
func EncodeHash(hash uint64) string {
	var buf [EncodedWidth]byte
	for i := EncodedWidth - 1; i >= 0; i-- {
		buf[i] = Alphabet[hash&31]
		hash >>= 5
	}
	return string(buf[:])
}
