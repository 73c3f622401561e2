// Package credentials generates memorable usernames and random passwords
// for issued exam credentials.
package credentials

import (
	"crypto/rand"
	"math/big"
)

var adjectives = []string{
	"amber", "azure", "bold", "bright", "calm", "cedar", "clear", "coral",
	"crimson", "eager", "fleet", "gold", "green", "ivory", "jade", "keen",
	"lunar", "maple", "noble", "north", "ocean", "onyx", "opal", "polar",
	"quiet", "rapid", "royal", "sable", "scarlet", "silver", "solar", "steady",
	"stone", "summit", "swift", "teal", "timber", "true", "violet", "winter",
}

var nouns = []string{
	"falcon", "harbor", "meadow", "beacon", "canyon", "cedar", "comet",
	"compass", "delta", "ember", "forest", "garnet", "glacier", "grove",
	"heron", "island", "lantern", "ledger", "marble", "mesa", "orchid",
	"osprey", "peak", "pebble", "pine", "prairie", "quartz", "raven",
	"reef", "ridge", "river", "sparrow", "spruce", "summit", "thicket",
	"timber", "trail", "tundra", "willow", "wren",
}

const passwordChars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateUsername returns a random "adjective-noun" pair.
func GenerateUsername() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	return adjective + "-" + noun, nil
}

// GeneratePassword returns a random password of the given length drawn from
// an unambiguous alphanumeric alphabet.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = 8
	}
	password := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		password[i] = passwordChars[num.Int64()]
	}

	return string(password), nil
}

func randomElement(slice []string) (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
