package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	orderNumberPrefix    = "ORD-"
	orderNumberSuffixLen = 5
	base36Alphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// OrderNumberGenerator returns a candidate order number for the given instant.
// Uniqueness is enforced by the database, callers retry on collision.
type OrderNumberGenerator func(now time.Time) (string, error)

// GenerateOrderNumber builds "ORD-<epoch millis>-<5 upper-case base36 chars>".
// Суффикс случайный: номер заказа открывает публичный трекинг.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := randomBase36(orderNumberSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate order number suffix: %w", err)
	}
	return fmt.Sprintf("%s%d-%s", orderNumberPrefix, now.UnixMilli(), suffix), nil
}

func randomBase36(n int) (string, error) {
	max := big.NewInt(int64(len(base36Alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = base36Alphabet[idx.Int64()]
	}
	return string(buf), nil
}
