package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCompiledTitle(t *testing.T) {
	cases := []struct {
		name  string
		cat   Category
		vol   string
		start *int
		end   *int
		want  string
	}{
		{"full range", CategoryConfluence, "3", intPtr(2019), intPtr(2021), "CONFLUENCE Vol. 3 (2019-2021)"},
		{"single year", CategorySynergy, "1", intPtr(2020), intPtr(2020), "SYNERGY Vol. 1 (2020)"},
		{"only end", CategorySynergy, "1", nil, intPtr(2022), "SYNERGY Vol. 1 (2022)"},
		{"no years", CategoryThesis, "7", nil, nil, "THESIS Vol. 7"},
		{"no volume", CategoryThesis, "", intPtr(2001), intPtr(2003), "THESIS (2001-2003)"},
		{"nothing", "", "", nil, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CompiledTitle(tc.cat, tc.vol, tc.start, tc.end))
		})
	}
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryResearchStudy.Valid())
	assert.False(t, Category("JOURNAL").Valid())
	assert.False(t, Category("thesis").Valid())
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
