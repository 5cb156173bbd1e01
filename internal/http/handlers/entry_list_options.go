package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel/starfield/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// entryQuery is the list query shared by GET /v1/entries and the dashboard.
//
//	q, sort, order, limit, offset
//	sortRating=<handle>                  order by that field's rating, unrated last
//	ratingField=<handle>&ratingOp=<op>   keep entries matching the condition
//	ratingValue=<n>                      required unless op is empty or notEmpty
type entryQuery struct {
	Query       string
	Sort        string
	Order       string
	SortRating  string
	RatingField string
	RatingOp    string
	RatingValue string
}

func readEntryQuery(c *fiber.Ctx, defaultSort string) entryQuery {
	return entryQuery{
		Query:       c.Query("q"),
		Sort:        c.Query("sort", defaultSort),
		Order:       c.Query("order", "desc"),
		SortRating:  strings.TrimSpace(c.Query("sortRating")),
		RatingField: strings.TrimSpace(c.Query("ratingField")),
		RatingOp:    strings.TrimSpace(c.Query("ratingOp")),
		RatingValue: strings.TrimSpace(c.Query("ratingValue")),
	}
}

// options resolves the query against the known field handles. The returned
// error is meant for the client.
func (q entryQuery) options(handles map[string]bool) (repository.EntryListOptions, error) {
	options := repository.EntryListOptions{
		Query:  q.Query,
		SortBy: q.Sort,
		Order:  q.Order,
	}

	if q.SortRating != "" {
		if !handles[q.SortRating] {
			return options, fmt.Errorf("unknown sort field %q", q.SortRating)
		}
		options.RatingSort = q.SortRating
	}

	if q.RatingField == "" && q.RatingOp == "" {
		return options, nil
	}
	if !handles[q.RatingField] {
		return options, fmt.Errorf("unknown condition field %q", q.RatingField)
	}

	condition := repository.RatingCondition{Handle: q.RatingField, Operator: q.RatingOp}
	if !isConditionOperator(q.RatingOp) {
		return options, fmt.Errorf("unknown condition operator %q", q.RatingOp)
	}
	if condition.NeedsValue() {
		value, err := strconv.Atoi(q.RatingValue)
		if err != nil {
			return options, fmt.Errorf("condition value must be an integer")
		}
		condition.Value = value
	}
	options.Condition = &condition

	return options, nil
}

func isConditionOperator(op string) bool {
	for _, known := range repository.ConditionOperators() {
		if op == known {
			return true
		}
	}
	return false
}

func fieldHandles(repo *repository.FieldRepository) (map[string]bool, error) {
	fields, err := repo.List()
	if err != nil {
		return nil, err
	}
	handles := make(map[string]bool, len(fields))
	for _, field := range fields {
		handles[field.Handle] = true
	}
	return handles, nil
}
