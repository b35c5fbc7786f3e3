package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"mop/internal/adapter"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  ListParams
	}{
		{"empty", "", ListParams{}},
		{"page and size", "page=2&pageSize=20", ListParams{Page: 2, PageSize: 20}},
		{"limit alias", "_limit=10", ListParams{PageSize: 10}},
		{"offset to page", "_offset=20&_limit=10", ListParams{Page: 3, PageSize: 10}},
		{"size capped", "pageSize=5000", ListParams{}},
		{"sort asc", "_sort=tittel", ListParams{SortBy: "tittel", SortOrder: "asc"}},
		{"sort desc prefix", "_sort=-tittel", ListParams{SortBy: "tittel", SortOrder: "desc"}},
		{"sort plus prefix", "_sort=%2Btittel", ListParams{SortBy: "tittel", SortOrder: "asc"}},
		{"order override", "_sort=tittel&_order=DESC", ListParams{SortBy: "tittel", SortOrder: "desc"}},
		{"multi-key keeps first", "_sort=tittel,status", ListParams{SortBy: "tittel", SortOrder: "asc"}},
		{"filters", "q=st%C3%B8y&status=P%C3%A5g%C3%A5r&vurdering=Lav", ListParams{
			Filters: adapter.Filters{Search: "støy", Status: "Pågår", Vurdering: "Lav"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, parseListParams(q))
		})
	}
}

func TestReadExpectedVersion(t *testing.T) {
	assert.Equal(t, int64(0), readExpectedVersion(""))
	assert.Equal(t, int64(3), readExpectedVersion("3"))
	assert.Equal(t, int64(3), readExpectedVersion(`"3"`))
	assert.Equal(t, int64(7), readExpectedVersion(`W/"7"`))
	assert.Equal(t, int64(0), readExpectedVersion("*"), "wildcards carry no version hint")
	assert.Equal(t, int64(0), readExpectedVersion("abc"))
}
