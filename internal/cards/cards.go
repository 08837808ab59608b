package cards

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Ranks in ascending run order. A is low only.
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

var Suits = []string{"♠", "♥", "♦", "♣"}

// DeckSize is the number of distinct tokens in a full deck.
const DeckSize = 52

var ErrInvalidCardToken = errors.New("invalid card token")

var rankValue = func() map[string]int {
	m := make(map[string]int, len(Ranks))
	for i, r := range Ranks {
		m[r] = i + 1
	}
	return m
}()

// Card is a parsed token. Value is the run ordinal, A=1 .. K=13.
type Card struct {
	Rank  string
	Suit  string
	Value int
}

func (c Card) String() string { return c.Rank + c.Suit }

// Parse splits a "<rank><suit>" token such as "10♥".
func Parse(token string) (Card, error) {
	for _, s := range Suits {
		rank, ok := strings.CutSuffix(token, s)
		if !ok {
			continue
		}
		if v, ok := rankValue[rank]; ok {
			return Card{Rank: rank, Suit: s, Value: v}, nil
		}
		break
	}
	return Card{}, fmt.Errorf("%w: %q", ErrInvalidCardToken, token)
}

// Rand is the randomness a shuffle needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type cryptoRand struct{}

func (cryptoRand) IntN(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return int(v.Int64())
}

// CryptoRand draws from crypto/rand.
var CryptoRand Rand = cryptoRand{}

// NewDeck returns all 52 tokens in a uniformly random order.
func NewDeck(rng Rand) []string {
	d := make([]string, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			d = append(d, r+s)
		}
	}
	Shuffle(d, rng)
	return d
}

// Shuffle permutes d in place (Fisher-Yates).
func Shuffle(d []string, rng Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}
