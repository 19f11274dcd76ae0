package sanpo_test

import (
	"testing"

	"github.com/fwojciec/sanpo"
	"github.com/stretchr/testify/assert"
)

func TestKeywordSet_Match(t *testing.T) {
	t.Parallel()

	set := sanpo.NewKeywordSet("費用", "料金")

	assert.True(t, set.Match("初期費用は10万円です"))
	assert.True(t, set.Match("料金表"))
	assert.False(t, set.Match("お問い合わせ"))
	assert.False(t, set.Match(""))
}

func TestKeywordSet_IgnoresEmptyKeywords(t *testing.T) {
	t.Parallel()

	set := sanpo.NewKeywordSet("", "危険")

	assert.Equal(t, []string{"危険"}, set.Words())
	assert.False(t, set.Match("安全です"))
}

func TestKeywordSet_WordsReturnsCopy(t *testing.T) {
	t.Parallel()

	set := sanpo.NewKeywordSet("注意")
	words := set.Words()
	words[0] = "changed"

	assert.Equal(t, []string{"注意"}, set.Words())
}

func TestKeywords_Classify(t *testing.T) {
	t.Parallel()

	t.Run("cost paragraph is not a risk", func(t *testing.T) {
		t.Parallel()

		sem := sanpo.DefaultKeywords().Classify([]string{"初期費用は10万円です"})

		assert.Equal(t, []string{"初期費用は10万円です"}, sem.Costs)
		assert.Empty(t, sem.Risks)
		assert.Empty(t, sem.OperatorInfo)
	})

	t.Run("paragraph can appear in several buckets", func(t *testing.T) {
		t.Parallel()

		p := "運営会社の手数料にはリスクがあります"
		sem := sanpo.DefaultKeywords().Classify([]string{"はじめに", p})

		assert.Equal(t, []string{p}, sem.Risks)
		assert.Equal(t, []string{p}, sem.Costs)
		assert.Equal(t, []string{p}, sem.OperatorInfo)
	})

	t.Run("buckets keep paragraph order and are never nil", func(t *testing.T) {
		t.Parallel()

		sem := sanpo.DefaultKeywords().Classify([]string{"価格A", "", "料金B"})

		assert.Equal(t, []string{"価格A", "料金B"}, sem.Costs)
		assert.NotNil(t, sem.Risks)
		assert.NotNil(t, sem.OperatorInfo)
	})
}
