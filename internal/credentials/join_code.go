package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for generating kid-friendly classroom join codes
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "cool", "swift", "clever", "jolly",
	"mighty", "super", "star", "wild", "funny", "lucky", "magic", "bouncy",
	"cheerful", "daring", "eager", "flying", "gentle", "kindly", "lively",
	"merry", "noble", "perky", "quick", "royal", "snappy", "turbo", "zippy",
	"bold", "cosmic", "epic", "fantastic", "groovy",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "phoenix", "unicorn", "rocket", "wizard", "knight",
	"robot", "astronaut", "hero", "champion", "explorer", "ranger", "comet",
	"thunder", "lightning", "tornado", "flame", "storm", "meadow", "garden",
	"island", "harbor", "forest", "summit", "valley", "river",
}

// GenerateJoinCode generates a classroom join code in the format
// "adjective-noun-NN". The two-digit suffix keeps accidental collisions
// rare; callers still retry on a unique violation.
func GenerateJoinCode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%02d", adjective, noun, suffix.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
