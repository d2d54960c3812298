package daily

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReduce_Example(t *testing.T) {
	got := Reduce([]parse.Message{
		{Sender: "John", Time: at(2024, 1, 1, 10), Body: "hi"},
		{Sender: "John", Time: at(2024, 1, 1, 11), Body: "hi again"},
		{Sender: "Mary", Time: at(2024, 1, 2, 10), Body: "hey"},
	})
	assert.Equal(t, []Interaction{
		{Name: "John", Day: day(2024, 1, 1)},
		{Name: "Mary", Day: day(2024, 1, 2)},
	}, got)
}

func TestReduce_TwoPeopleTwoDays(t *testing.T) {
	got := Reduce([]parse.Message{
		{Sender: "John", Time: at(2024, 1, 1, 10)},
		{Sender: "John", Time: at(2024, 1, 1, 11)},
		{Sender: "Mary", Time: at(2024, 1, 1, 12)},
		{Sender: "John", Time: at(2024, 1, 2, 10)},
		{Sender: "Mary", Time: at(2024, 1, 2, 11)},
	})
	assert.Equal(t, []Interaction{
		{Name: "John", Day: day(2024, 1, 1)},
		{Name: "John", Day: day(2024, 1, 2)},
		{Name: "Mary", Day: day(2024, 1, 1)},
		{Name: "Mary", Day: day(2024, 1, 2)},
	}, got)
}

func TestReduce_ManyMessagesOneRow(t *testing.T) {
	var msgs []parse.Message
	for i := 0; i < 50; i++ {
		msgs = append(msgs, parse.Message{Sender: "Ana", Time: at(2024, 6, 1, 12).Add(time.Duration(i) * time.Minute * 20)})
	}
	got := Reduce(msgs)
	require.Len(t, got, 2) // noon plus 49*20min crosses midnight once
	assert.Equal(t, day(2024, 6, 1), got[0].Day)
	assert.Equal(t, day(2024, 6, 2), got[1].Day)
}

func TestReduce_Empty(t *testing.T) {
	got := Reduce(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReduce_NamesAreExact(t *testing.T) {
	got := Reduce([]parse.Message{
		{Sender: "john", Time: at(2024, 1, 1, 10)},
		{Sender: "John", Time: at(2024, 1, 1, 10)},
	})
	assert.Equal(t, []Interaction{
		{Name: "John", Day: day(2024, 1, 1)},
		{Name: "john", Day: day(2024, 1, 1)},
	}, got)
}

func TestReduce_SortedAndUniqueForShuffledInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Zoe", "Ana", "Bob", "Émile", "ana"}
	var msgs []parse.Message
	for i := 0; i < 400; i++ {
		msgs = append(msgs, parse.Message{
			Sender: names[rng.Intn(len(names))],
			Time:   at(2024, 1, 1+rng.Intn(20), rng.Intn(24)),
			Body:   fmt.Sprint(i),
		})
	}

	got := Reduce(msgs)
	assert.True(t, slices.IsSortedFunc(got, Compare))

	seen := map[Interaction]bool{}
	for _, r := range got {
		assert.False(t, seen[r], "duplicate %v", r)
		seen[r] = true
	}
	for _, m := range msgs {
		assert.True(t, seen[Interaction{Name: m.Sender, Day: DayOf(m.Time)}])
	}

	rng.Shuffle(len(msgs), func(i, j int) { msgs[i], msgs[j] = msgs[j], msgs[i] })
	assert.Equal(t, got, Reduce(msgs))
}

func TestDayOf_KeepsWallClockDay(t *testing.T) {
	late := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, day(2024, 1, 1), DayOf(late))
}
