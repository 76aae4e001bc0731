package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"

	"baymax-vitals/internal/models"
)

// CacheKey identifies a classification. Two requests with the same key
// share a cached answer.
type CacheKey struct {
	Sex       string          `json:"sex"`
	Age       int             `json:"age"`
	Weight    string          `json:"weight"`
	Height    string          `json:"height"`
	StatName  models.StatName `json:"statName"`
	StatValue float64         `json:"statValue"`
}

// NewCacheKey normalises the free-text fields so "70kg" and "70 KG" collapse.
func NewCacheKey(req models.HealthCheckRequest) CacheKey {
	return CacheKey{
		Sex:       strings.ToLower(strings.TrimSpace(req.Sex)),
		Age:       req.Age,
		Weight:    squash(req.Weight),
		Height:    squash(req.Height),
		StatName:  req.StatName,
		StatValue: req.StatValue,
	}
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Canonical is an unambiguous text form; fields are length-prefixed so no
// separator inside a value can shift a boundary.
func (k CacheKey) Canonical() string {
	fields := []string{
		k.Sex,
		strconv.Itoa(k.Age),
		k.Weight,
		k.Height,
		string(k.StatName),
		strconv.FormatFloat(k.StatValue, 'g', -1, 64),
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
		b.WriteByte(';')
	}
	return b.String()
}

// Hash hex SHA-256 of Canonical
func (k CacheKey) Hash() string {
	sum := sha256.Sum256([]byte(k.Canonical()))
	return hex.EncodeToString(sum[:])
}

// StorageKey health-check:{userId}:{hash}
func (k CacheKey) StorageKey(userID string) string {
	return "health-check:" + userID + ":" + k.Hash()
}
