package echoapi

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
)

var orderingParam = "ordering"

type (
	// Ordering sorts listed records by JSON field, e.g. `?ordering=-due_date,title`.
	Ordering struct {
		Fields []OrderingField
	}

	OrderingField struct {
		Name      string
		Ascending bool
	}
)

func (ord *Ordering) Bind(ctx echo.Context) {
	val := strings.TrimSpace(ctx.QueryParam(orderingParam))
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Fields = append(ord.Fields, OrderingField{Name: field, Ascending: !descending})
	}
}

// Sort stably reorders records. Records missing a field sort before the others;
// timestamps are compared as their RFC 3339 text.
func (ord *Ordering) Sort(records []core.Resource) error {
	if len(ord.Fields) == 0 || len(records) < 2 {
		return nil
	}

	docs := make([]map[string]interface{}, len(records))
	for i, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return errors.Wrapf(err, "marshalling %s %s", r.ResourceType(), r.ResourceID())
		}
		if err = json.Unmarshal(raw, &docs[i]); err != nil {
			return errors.Wrapf(err, "unmarshalling %s %s", r.ResourceType(), r.ResourceID())
		}
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		for _, f := range ord.Fields {
			c := compareJSON(docs[order[i]][f.Name], docs[order[j]][f.Name])
			if c == 0 {
				continue
			}
			if f.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	sorted := make([]core.Resource, len(records))
	for i, idx := range order {
		sorted[i] = records[idx]
	}
	copy(records, sorted)
	return nil
}

// compareJSON compares decoded JSON scalars. Values of different kinds are equal, except null.
func compareJSON(a, b interface{}) int {
	switch x := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	if b == nil {
		return 1
	}
	return 0
}
