package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/storage/database/fixtures"
)

func TestOrdering_Bind(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []OrderingField
	}{
		{name: "none", query: ""},
		{name: "blank", query: "?ordering=%20"},
		{name: "single", query: "?ordering=title", want: []OrderingField{{Name: "title", Ascending: true}}},
		{
			name:  "multiple",
			query: "?ordering=-due_date,%20title,-",
			want:  []OrderingField{{Name: "due_date"}, {Name: "title", Ascending: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/assignments"+tt.query, nil)
			ctx := echo.New().NewContext(req, httptest.NewRecorder())

			var ord Ordering
			ord.Bind(ctx)
			assert.Equal(t, tt.want, ord.Fields)
		})
	}
}

func TestOrdering_Sort(t *testing.T) {
	badges := func() []core.Resource {
		var records []core.Resource
		for _, b := range fixtures.Badges() {
			records = append(records, b)
		}
		return records
	}
	ids := func(records []core.Resource) []string {
		var result []string
		for _, r := range records {
			result = append(result, r.ResourceID())
		}
		return result
	}

	tests := []struct {
		name   string
		fields []OrderingField
		want   []string
	}{
		{name: "unordered", want: []string{"1", "2", "3"}},
		{name: "descending", fields: []OrderingField{{Name: "name"}}, want: []string{"3", "2", "1"}},
		{name: "unknown field keeps the order", fields: []OrderingField{{Name: "color", Ascending: true}}, want: []string{"1", "2", "3"}},
		{
			name:   "ties broken by the next field",
			fields: []OrderingField{{Name: "color", Ascending: true}, {Name: "criteria", Ascending: true}},
			want:   []string{"2", "3", "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := badges()
			ord := Ordering{Fields: tt.fields}
			require.NoError(t, ord.Sort(records))
			assert.Equal(t, tt.want, ids(records))
		})
	}

	t.Run("missing values first", func(t *testing.T) {
		records := []core.Resource{
			lms.ProgressRecord{ID: "1", Score: intPtr(85)},
			lms.ProgressRecord{ID: "2"},
			lms.ProgressRecord{ID: "3", Score: intPtr(40)},
		}
		ord := Ordering{Fields: []OrderingField{{Name: "score", Ascending: true}}}
		require.NoError(t, ord.Sort(records))
		assert.Equal(t, []string{"2", "3", "1"}, ids(records))
	})
}

func TestCompareJSON(t *testing.T) {
	tests := []struct {
		a, b interface{}
		want int
	}{
		{nil, nil, 0},
		{nil, "a", -1},
		{"a", nil, 1},
		{1.0, 2.0, -1},
		{2.0, 2.0, 0},
		{"b", "a", 1},
		{false, true, -1},
		{true, true, 0},
		{"1", 1.0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareJSON(tt.a, tt.b), "compareJSON(%v, %v)", tt.a, tt.b)
	}
}

func intPtr(i int) *int { return &i }
