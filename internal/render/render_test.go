package render

import (
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(m time.Month, day int) time.Time {
	return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC)
}

var rows = []daily.Interaction{
	{Name: "Ana", Day: d(1, 1)},
	{Name: "Ana", Day: d(1, 2)},
	{Name: "Ana", Day: d(1, 6)},
	{Name: "張偉", Day: d(1, 3)},
}

func TestContacts_Groups(t *testing.T) {
	cs := Contacts(rows)
	require.Len(t, cs, 2)
	assert.Equal(t, "Ana", cs[0].Name)
	assert.Len(t, cs[0].Days, 3)
	assert.Equal(t, d(1, 1), cs[0].First())
	assert.Equal(t, d(1, 6), cs[0].Last())
	assert.Equal(t, "張偉", cs[1].Name)

	assert.Empty(t, Contacts(nil))
}

func TestContactTable_AlignsWideRunes(t *testing.T) {
	out := ContactTable(Contacts(rows), Options{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME   DAYS  FIRST       LAST      ", lines[0])
	assert.Equal(t, "Ana       3  2024-01-01  2024-01-06", lines[1])
	// 張偉 is four columns wide
	assert.Equal(t, "張偉      1  2024-01-03  2024-01-03", lines[2])
}

func TestContactTable_ColorAndCap(t *testing.T) {
	cs := []Contact{{Name: "A very long contact name", Days: []time.Time{d(2, 1)}}}
	out := ContactTable(cs, Options{Color: true, MaxWidth: 8})
	assert.Contains(t, out, colorName)
	assert.Contains(t, out, "A very …")
}

func TestContactDetail_Gaps(t *testing.T) {
	out := ContactDetail(Contacts(rows)[0], Options{})
	assert.Contains(t, out, "3 days with contact, 2024-01-01 .. 2024-01-06")
	assert.Contains(t, out, "2024-01-02  Tue")
	assert.Contains(t, out, "... 3 days without contact ...")
	assert.NotContains(t, out, "\033[")
	assert.Equal(t, 1, strings.Count(out, "without contact"))
}

func TestHeads(t *testing.T) {
	msgs := []parse.Message{
		{Sender: "John", Time: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Body: "hi"},
		{Sender: "Mary", Time: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), Body: "hey"},
	}
	assert.Equal(t, "2024-01-01 10:00:00  John: hi\n", MessagesHead(msgs, 1))
	assert.Equal(t, 2, strings.Count(MessagesHead(msgs, 5), "\n"))
	assert.Equal(t, "2024-01-01  Ana\n2024-01-02  Ana\n", DailyHead(rows, 2))
	assert.Empty(t, DailyHead(nil, 5))
}
