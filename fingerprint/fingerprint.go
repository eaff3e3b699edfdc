// Package fingerprint hashes the tag structure of a markup fragment so that
// layout drift between runs can be detected without comparing text.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// shingleSize is the n-gram width over the tag sequence.
const shingleSize = 3

// Layout computes a 64-bit SimHash over 3-gram shingles of the markup's
// start tags. Each tag is keyed by name and first class, so a renamed
// list class moves the fingerprint while product text does not.
// Markup with no tags hashes to 0.
func Layout(markup string) uint64 {
	tags := startTags(markup)
	if len(tags) == 0 {
		return 0
	}
	if len(tags) < shingleSize {
		return simhash(tags)
	}

	shingles := make([]string, 0, len(tags)-shingleSize+1)
	for i := 0; i+shingleSize <= len(tags); i++ {
		shingles = append(shingles, strings.Join(tags[i:i+shingleSize], ">"))
	}
	return simhash(shingles)
}

// Hex formats a fingerprint as 16 lowercase hex digits.
func Hex(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

func startTags(markup string) []string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var tags []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tags = append(tags, tagKey(z.Token()))
		}
	}
}

func tagKey(tok html.Token) string {
	for _, a := range tok.Attr {
		if a.Key != "class" {
			continue
		}
		if fields := strings.Fields(a.Val); len(fields) > 0 {
			return tok.Data + "." + fields[0]
		}
	}
	return tok.Data
}

// simhash uses FNV-64a per token with bit vector accumulation.
func simhash(tokens []string) uint64 {
	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}
