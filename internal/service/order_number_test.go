package service

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderNumberRe = regexp.MustCompile(`^ORD-\d+-[0-9A-Z]{5}$`)

func TestGenerateOrderNumber_Format(t *testing.T) {
	now := time.UnixMilli(1717171717171)
	for i := 0; i < 200; i++ {
		n, err := GenerateOrderNumber(now)
		require.NoError(t, err)
		assert.Regexp(t, orderNumberRe, n)
		assert.True(t, strings.HasPrefix(n, "ORD-1717171717171-"), n)
	}
}

func TestGenerateOrderNumber_SuffixIsRandomWithinOneInstant(t *testing.T) {
	now := time.UnixMilli(1717171717171)
	const calls = 2000

	seen := make(map[string]struct{}, calls)
	withLetters := 0
	for i := 0; i < calls; i++ {
		n, err := GenerateOrderNumber(now)
		require.NoError(t, err)
		suffix := n[strings.LastIndexByte(n, '-')+1:]
		require.Len(t, suffix, orderNumberSuffixLen)
		if strings.ContainsAny(suffix, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			withLetters++
		}
		seen[suffix] = struct{}{}
	}

	// 36^5 вариантов: на 2000 вызовах допускаем единичные совпадения
	assert.GreaterOrEqual(t, len(seen), calls-5)
	// доля суффиксов без единой буквы (10/36)^5 < 0.2%
	assert.Greater(t, withLetters, calls*9/10)
}
