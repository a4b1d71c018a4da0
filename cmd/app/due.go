package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/starford/raido/internal/models"
)

var dueParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDue accepts an ISO date or a natural-language phrase such as "tomorrow"
// or "next friday", resolved relative to today.
func parseDue(s string, today models.Date) (models.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := models.ParseDate(s); err == nil {
		return d, nil
	}

	base, err := time.Parse(models.DateLayout, today.String())
	if err != nil {
		return models.Date{}, err
	}
	// Anchor at noon so relative phrases never cross a day boundary.
	r, err := dueParser.Parse(s, base.Add(12*time.Hour))
	if err != nil {
		return models.Date{}, fmt.Errorf("parse due date %q: %w", s, err)
	}
	if r == nil {
		return models.Date{}, fmt.Errorf("unrecognised due date %q", s)
	}
	return models.DateOf(r.Time), nil
}
