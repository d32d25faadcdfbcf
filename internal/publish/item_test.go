package publish

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func order(v float64) *float64 { return &v }

func names(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestSortItems_OrderedAscendingThenUnorderedDescending(t *testing.T) {
	items := []*Item{
		{Name: "b", Order: order(2)},
		{Name: "a", Order: order(1)},
		{Name: "z"},
		{Name: "x"},
	}

	SortItems(items)

	require.Equal(t, []string{"a", "b", "z", "x"}, names(items))
}

func TestSortItems_OrderTiesBreakByNameAscending(t *testing.T) {
	items := []*Item{
		{Name: "m", Order: order(1)},
		{Name: "c", Order: order(1)},
		{Name: "q"},
		{Name: "k", Order: order(0.5)},
	}

	SortItems(items)

	require.Equal(t, []string{"k", "c", "m", "q"}, names(items))
}

func TestGroupBySection_SortsLabelsAndItems(t *testing.T) {
	items := []*Item{
		{Name: "intro", Section: "Week 2"},
		{Name: "setup", Section: "Week 1", Order: order(1)},
		{Name: "extra", Section: "Week 1"},
		{Name: "advanced", Section: "Week 2"},
	}

	groups := GroupBySection(items)

	require.Len(t, groups, 2)
	require.Equal(t, "Week 1", groups[0].Label)
	require.Equal(t, []string{"setup", "extra"}, names(groups[0].Items))
	require.Equal(t, "Week 2", groups[1].Label)
	require.Equal(t, []string{"intro", "advanced"}, names(groups[1].Items))
}

func TestLinkDefaults(t *testing.T) {
	require.Equal(t, "Link", Link{}.DisplayName())
	require.Equal(t, "#", Link{}.Target())
	l := Link{Name: "Docs", URL: "https://example.com"}
	require.Equal(t, "Docs", l.DisplayName())
	require.Equal(t, "https://example.com", l.Target())
}

func TestItemOutputFiles(t *testing.T) {
	nb := &Item{ExerciseFile: "a.ipynb", AnswersFile: "a-ANSWERS.ipynb", DataFile: "a-data.zip"}
	require.True(t, nb.HasData())
	require.Equal(t, []string{"a.ipynb", "a-ANSWERS.ipynb", "a-data.zip"}, nb.OutputFiles())

	md := &Item{HTMLFile: "b.html"}
	require.False(t, md.HasData())
	require.Equal(t, []string{"b.html"}, md.OutputFiles())
}

func TestFingerprint_StableAndContentSensitive(t *testing.T) {
	fields := map[string]any{"title": "Foo", "order": 1}

	a, err := Fingerprint(fields, []byte("Body text"))
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"order": 1, "title": "Foo"}, []byte("Body text"))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Fingerprint(fields, []byte("Other text"))
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	_, err = Fingerprint(nil, nil)
	require.Error(t, err)
}
