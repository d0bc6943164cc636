package server

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/usecase/memories"
)

func invalidParam(name string) error {
	return model.BadRequest("invalid %s parameter", name)
}

// positiveInt parses an optional integer parameter that must be at least 1.
// Zero is returned when the parameter is absent.
func positiveInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name)
	}
	if v < 1 {
		return 0, model.BadRequest("%s must be at least 1", name)
	}
	return v, nil
}

func optionalInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalidParam(name)
	}
	return &v, nil
}

func optionalFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalidParam(name)
	}
	return &v, nil
}

// commaList splits a comma separated parameter, dropping empty items
func commaList(c echo.Context, name string) []string {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func listInput(c echo.Context) (memories.ListInput, error) {
	in := memories.ListInput{
		UserID:    c.QueryParam("userId"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: model.SortOrder(c.QueryParam("sortOrder")),
		Tags:      commaList(c, "tags"),
		Emotion:   c.QueryParam("emotion"),
	}

	var err error
	if in.Page, err = positiveInt(c, "page"); err != nil {
		return in, err
	}
	if in.PageSize, err = positiveInt(c, "pageSize"); err != nil {
		return in, err
	}
	if in.StartDate, err = optionalInt64(c, "startDate"); err != nil {
		return in, err
	}
	if in.EndDate, err = optionalInt64(c, "endDate"); err != nil {
		return in, err
	}
	return in, nil
}

func embeddingsInput(c echo.Context) (memories.EmbeddingsInput, error) {
	in := memories.EmbeddingsInput{
		UserID: c.QueryParam("userId"),
		Query:  c.QueryParam("query"),
	}

	var err error
	if in.Threshold, err = optionalFloat(c, "threshold"); err != nil {
		return in, err
	}
	if in.Limit, err = positiveInt(c, "limit"); err != nil {
		return in, err
	}
	return in, nil
}
