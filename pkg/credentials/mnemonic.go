package credentials

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	"github.com/mrz1836/lexe/internal/lexecrypto"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// MnemonicWords is the length of a root seed mnemonic (256 bits of entropy).
const MnemonicWords = 24

// maxTypoDistance is the largest Levenshtein distance still worth suggesting.
const maxTypoDistance = 2

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// Mnemonic encodes the seed as 24 BIP39 words.
func (s *RootSeed) Mnemonic() (string, error) {
	b, err := s.expose()
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(b)
}

// RootSeedFromMnemonic decodes a 24-word phrase back into a seed. Numbering,
// bullets, commas and case are tolerated so a phrase can be pasted from a
// written backup.
func RootSeedFromMnemonic(phrase string) (*RootSeed, error) {
	normalized := NormalizeMnemonic(phrase)
	words := strings.Fields(normalized)
	if len(words) != MnemonicWords {
		return nil, lexeerr.WithDetails(lexeerr.ErrInvalidMnemonic, map[string]string{
			"words": strconv.Itoa(len(words)),
			"want":  strconv.Itoa(MnemonicWords),
		})
	}

	if typos := detectTypos(words); len(typos) > 0 {
		return nil, lexeerr.WithSuggestion(lexeerr.ErrInvalidMnemonic, strings.Join(typos, "\n"))
	}

	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrInvalidMnemonic, err)
	}
	defer lexecrypto.Zero(entropy)
	return RootSeedFromBytes(entropy)
}

// NormalizeMnemonic lowercases the phrase, strips list markers and commas,
// and collapses whitespace.
func NormalizeMnemonic(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// SuggestWord returns the closest BIP39 word, or "" if none is close enough.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= maxTypoDistance {
		return suggestion
	}
	return ""
}

// detectTypos describes every word missing from the wordlist, 1-indexed.
func detectTypos(words []string) []string {
	var out []string
	for i, word := range words {
		if _, ok := bip39.GetWordIndex(word); ok {
			continue
		}
		msg := "word " + strconv.Itoa(i+1) + ": '" + word + "' is not a BIP39 word"
		if s := SuggestWord(word); s != "" {
			msg += ", did you mean '" + s + "'?"
		}
		out = append(out, msg)
	}
	return out
}
