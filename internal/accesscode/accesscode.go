// Package accesscode implements the two gate-code families: the time-bucketed
// rotating code any client holding the shared seed can derive offline, and
// crypto-random one-time codes. The rotating construction (FNV hash feeding
// an LCG) only obscures; it is a shared-formula trick, not a security
// primitive.
package accesscode

import (
	"crypto/rand"
	"fmt"
	"hash/fnv"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Alphabet excludes the visually ambiguous I, L, O, 0 and 1.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GroupSize and Groups define the 4-4-4 wire format.
const (
	GroupSize = 4
	Groups    = 3
	Delimiter = "-"
)

// DefaultIntervalMinutes is the rotating-code time bucket width.
const DefaultIntervalMinutes = 30

var codeRx = regexp.MustCompile(`^[A-HJKMNP-Z2-9]{4}-[A-HJKMNP-Z2-9]{4}-[A-HJKMNP-Z2-9]{4}$`)

// Normalize uppercases and trims surrounding whitespace so user input can be
// compared against generated codes.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidFormat reports whether a code matches the exact grouped format.
// Callers must reject malformed input before any comparison or consumption.
func ValidFormat(code string) bool {
	return codeRx.MatchString(code)
}

// Bucket returns the rotating-code time bucket for a moment, shifted by
// offset. Offset +1 yields the next bucket so staff can read a code in
// advance.
func Bucket(now time.Time, intervalMinutes, offset int) int64 {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	return now.UnixMilli()/(int64(intervalMinutes)*60_000) + int64(offset)
}

// Rotating derives the deterministic code for seed and time bucket. Any two
// evaluations in the same bucket produce the identical code; a new bucket
// produces an apparently unrelated one.
func Rotating(seed string, intervalMinutes, offset int, now time.Time) string {
	bucket := Bucket(now, intervalMinutes, offset)
	state := fnvHash(seed + ":" + strconv.FormatInt(bucket, 10))

	var b strings.Builder
	b.Grow(GroupSize*Groups + Groups - 1)
	for i := 0; i < GroupSize*Groups; i++ {
		if i > 0 && i%GroupSize == 0 {
			b.WriteString(Delimiter)
		}
		state = lcgNext(state)
		b.WriteByte(Alphabet[state%uint32(len(Alphabet))])
	}
	return b.String()
}

// GenerateRandomCodes draws n one-time codes by uniform crypto-random
// sampling over the alphabet. Codes are independent; collisions are
// overwhelmingly unlikely for practical batch sizes.
func GenerateRandomCodes(n int) ([]string, error) {
	codes := make([]string, 0, n)
	max := big.NewInt(int64(len(Alphabet)))

	for i := 0; i < n; i++ {
		var b strings.Builder
		b.Grow(GroupSize*Groups + Groups - 1)
		for j := 0; j < GroupSize*Groups; j++ {
			if j > 0 && j%GroupSize == 0 {
				b.WriteString(Delimiter)
			}
			idx, err := rand.Int(rand.Reader, max)
			if err != nil {
				return nil, fmt.Errorf("draw random symbol: %w", err)
			}
			b.WriteByte(Alphabet[idx.Int64()])
		}
		codes = append(codes, b.String())
	}
	return codes, nil
}

// fnvHash is FNV-1a over the input bytes: the multiply-xor hash that seeds
// the generator.
func fnvHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// lcgNext advances the linear congruential generator (Numerical Recipes
// constants, modulus 2^32 via uint32 wraparound).
func lcgNext(state uint32) uint32 {
	return state*1664525 + 1013904223
}
