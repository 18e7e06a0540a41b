package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// ProjectIDPrefix is prepended to every generated project id.
const ProjectIDPrefix = "proj"

// 90000 five-digit groups times 9000 four-digit groups.
var publicIDSpace = big.NewInt(90000 * 9000)

var publicIDPattern = regexp.MustCompile(`^[a-z]+-\d{5}-\d{4}$`)

// NewPublicID returns a human-readable id such as "proj-12345-6789".
func NewPublicID(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, publicIDSpace)
	if err != nil {
		return "", fmt.Errorf("generate public id: %w", err)
	}
	v := n.Int64()
	return fmt.Sprintf("%s-%05d-%04d", prefix, 10000+v/9000, 1000+v%9000), nil
}

// IsPublicID reports whether id has the shape produced by NewPublicID.
func IsPublicID(id string) bool {
	return publicIDPattern.MatchString(id)
}
