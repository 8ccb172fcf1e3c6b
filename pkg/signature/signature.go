/*
Package signature maps words to prime-product signatures.

Every letter a-z owns one of the first 26 primes. A word's signature is the
product of the primes of its letters, counted with multiplicity:

	Of("cat") == 5 * 2 * 71 == 710

By unique factorization, signature(w1) divides signature(w2) exactly when the
letters of w1 form a sub-multiset of the letters of w2, which turns "can w1 be
spelled from the letters of w2" into a single remainder check.

# Precision

Signatures are held in a uint64 while they fit. The first multiplication that
would overflow (checked with bits.Mul64) promotes the value to a big.Int, so
words of any length are supported and wraparound can never produce a false
match. A value that fits in 64 bits is always kept in the narrow form, which
keeps Equal and Divides cheap for ordinary dictionary words.

# Invalid input

Only ASCII letters are accepted, case-insensitively. Apostrophes, digits,
hyphens, whitespace and anything non-ASCII yield an *InvalidCharacterError,
which matches ErrInvalidCharacter with errors.Is. The empty word is valid and
maps to One; deciding what an empty query means is left to the caller.
*/
package signature

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"sort"
	"strconv"
)

// primes holds the prime assigned to each letter, indexed by letter - 'a'.
var primes = [26]uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41,
	43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97, 101,
}

// ErrInvalidCharacter is matched by every error returned for words containing
// characters outside a-z.
var ErrInvalidCharacter = errors.New("invalid character")

// InvalidCharacterError reports the first rejected rune of a word.
type InvalidCharacterError struct {
	Word   string
	Char   rune
	Offset int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d in %q", e.Char, e.Offset, e.Word)
}

func (e *InvalidCharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

// Signature is an immutable prime-product value. The zero value is not a
// valid signature; every computed signature is at least One.
type Signature struct {
	n    uint64
	wide *big.Int
}

// One is the signature of the empty word.
var One = Signature{n: 1}

// Prime returns the prime assigned to an ASCII letter of either case.
func Prime(letter byte) (uint64, bool) {
	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	if letter < 'a' || letter > 'z' {
		return 0, false
	}
	return primes[letter-'a'], true
}

func primeOf(r rune) (uint64, bool) {
	if r < 0 || r > 'z' {
		return 0, false
	}
	return Prime(byte(r))
}

// Of computes the signature of word.
func Of(word string) (Signature, error) {
	sig := One
	for i, r := range word {
		p, ok := primeOf(r)
		if !ok {
			return Signature{}, &InvalidCharacterError{Word: word, Char: r, Offset: i}
		}
		sig = sig.mul(p)
	}
	return sig, nil
}

// MustOf is like Of but panics on invalid input.
func MustOf(word string) Signature {
	sig, err := Of(word)
	if err != nil {
		panic(err)
	}
	return sig
}

// mul returns s * p, promoting to big.Int on overflow.
func (s Signature) mul(p uint64) Signature {
	if s.wide == nil {
		hi, lo := bits.Mul64(s.n, p)
		if hi == 0 {
			return Signature{n: lo}
		}
		w := new(big.Int).SetUint64(s.n)
		return Signature{wide: w.Mul(w, new(big.Int).SetUint64(p))}
	}
	w := new(big.Int).SetUint64(p)
	return Signature{wide: w.Mul(w, s.wide)}
}

// Divides reports whether s evenly divides target. Zero signatures never
// divide and are never divided.
func (s Signature) Divides(target Signature) bool {
	switch {
	case s.IsZero() || target.IsZero():
		return false
	case s.wide == nil && target.wide == nil:
		return target.n%s.n == 0
	case target.wide == nil:
		// s does not fit in 64 bits, so it is larger than target.
		return false
	}
	var rem big.Int
	rem.Rem(target.wide, s.BigInt())
	return rem.Sign() == 0
}

// Equal reports whether both signatures hold the same value.
func (s Signature) Equal(other Signature) bool {
	if s.wide == nil || other.wide == nil {
		return s.wide == nil && other.wide == nil && s.n == other.n
	}
	return s.wide.Cmp(other.wide) == 0
}

// IsZero reports whether s is the zero value.
func (s Signature) IsZero() bool {
	return s.wide == nil && s.n == 0
}

// IsWide reports whether s needed more than 64 bits.
func (s Signature) IsWide() bool {
	return s.wide != nil
}

// BigInt returns a copy of the value as a big.Int.
func (s Signature) BigInt() *big.Int {
	if s.wide == nil {
		return new(big.Int).SetUint64(s.n)
	}
	return new(big.Int).Set(s.wide)
}

// String renders the value in decimal.
func (s Signature) String() string {
	if s.wide == nil {
		return strconv.FormatUint(s.n, 10)
	}
	return s.wide.String()
}

// Parse reads a positive decimal signature as written by String.
func Parse(text string) (Signature, error) {
	if text == "" {
		return Signature{}, errors.New("empty signature")
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return Signature{}, fmt.Errorf("malformed signature %q", text)
		}
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok || v.Sign() <= 0 {
		return Signature{}, fmt.Errorf("malformed signature %q", text)
	}
	if v.IsUint64() {
		return Signature{n: v.Uint64()}, nil
	}
	return Signature{wide: v}, nil
}

// Alphagram returns the lowercase letters of word sorted ascending.
// Words share an alphagram exactly when they share a signature.
func Alphagram(word string) (string, error) {
	letters := make([]byte, 0, len(word))
	for i, r := range word {
		if _, ok := primeOf(r); !ok {
			return "", &InvalidCharacterError{Word: word, Char: r, Offset: i}
		}
		b := byte(r)
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		letters = append(letters, b)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters), nil
}
