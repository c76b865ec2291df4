package random

import (
	"crypto/rand"
	"github.com/myrjola/interviewprep/internal/errors"
	"math/big"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n letters drawn from crypto/rand. Used for CSP nonces.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	upper := big.NewInt(int64(len(allowedLetters)))
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", errors.Wrap(err, "random int")
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}
