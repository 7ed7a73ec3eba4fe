package calendar

import (
	"fmt"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
)

// Calendar 미국 증시 개장일 판정
// 주말 + 설정된 휴장일은 개장일이 아니다.
type Calendar struct {
	loc      *time.Location
	holidays map[string]struct{}
}

// New builds a calendar from YYYY-MM-DD holidays in the given IANA zone
func New(timezone string, holidays []string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", timezone, err)
	}

	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := contracts.ParseDate(h); err != nil {
			return nil, err
		}
		set[h] = struct{}{}
	}

	return &Calendar{loc: loc, holidays: set}, nil
}

// Location returns the exchange time zone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today returns the current calendar date in the exchange time zone
func (c *Calendar) Today(now time.Time) time.Time {
	y, m, d := now.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsMarketDay reports whether the exchange is open on date (calendar date, zone ignored)
func (c *Calendar) IsMarketDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[contracts.FormatDate(date)]
	return !holiday
}

// IsHoliday reports whether date is a configured holiday
func (c *Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.holidays[contracts.FormatDate(date)]
	return ok
}
