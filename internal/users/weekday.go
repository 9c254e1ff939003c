package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WeekdaySet is a set of weekdays stored as a bitmask indexed by time.Weekday.
type WeekdaySet uint8

// Weekdays lists the days Monday first, as the day picker shows them.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var dayAliases = map[string]time.Weekday{
	"m": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"t": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"w": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"th": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"f": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"sa": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
	"su": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
}

// NewWeekdaySet returns a set holding days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// ParseWeekdays parses a comma or space separated list of day names or the
// short codes m, t, w, th, f, sa, su.
func ParseWeekdays(s string) (WeekdaySet, error) {
	var set WeekdaySet
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	for _, f := range fields {
		d, ok := dayAliases[strings.ToLower(f)]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", f)
		}
		set = set.Add(d)
	}
	return set, nil
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet    { return s | 1<<uint(d) }
func (s WeekdaySet) Remove(d time.Weekday) WeekdaySet { return s &^ (1 << uint(d)) }
func (s WeekdaySet) Toggle(d time.Weekday) WeekdaySet { return s ^ 1<<uint(d) }

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Empty reports whether no day is selected.
func (s WeekdaySet) Empty() bool {
	return s == 0
}

// Days returns the selected days Monday first.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for _, d := range Weekdays {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// String returns the comma separated three letter names, e.g. "Mon,Thu".
// It is also the persisted form.
func (s WeekdaySet) String() string {
	days := s.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ",")
}

// Display returns the full upper-cased day names for chat replies.
func (s WeekdaySet) Display() string {
	days := s.Days()
	if len(days) == 0 {
		return "none"
	}
	upper := cases.Upper(language.English)
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = upper.String(d.String())
	}
	return strings.Join(names, ", ")
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	days := s.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return json.Marshal(names)
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := ParseWeekdays(strings.Join(names, ","))
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MatchesToday reports whether now falls on one of the selected laundry days.
func MatchesToday(days WeekdaySet, now time.Time) bool {
	return days.Has(now.Weekday())
}
