package weather

import (
	"fmt"
	"strings"
)

// FormatWindow renders one line per forecast hour.
func FormatWindow(w Window) string {
	var b strings.Builder
	for i := range w.Times {
		fmt.Fprintf(&b, "%-7s%.1f C  %d%%  %s\n",
			w.Times[i].Format("15:04"),
			w.Temperatures[i],
			w.PrecipitationProbability[i],
			Describe(w.WeatherCodes[i]),
		)
	}
	return b.String()
}

// FormatNow renders a NowResult as a chat reply.
func FormatNow(res NowResult) string {
	var b strings.Builder
	b.WriteString("CURRENT FORECAST\n")
	if res.Window != nil {
		b.WriteString(FormatWindow(*res.Window))
	}
	b.WriteString("\n")

	hour := res.Reference.Hour()
	switch res.Reason {
	case ReasonMidnight:
		b.WriteString("It's 12 AM. Check again later.")
	case ReasonPreDawn:
		fmt.Fprintf(&b, "It's %d AM. Check again later.", hour)
	case ReasonTooLate:
		fmt.Fprintf(&b, "It's %d PM. Laba tomorrow.", hour-12)
	default:
		if res.CanLaba {
			b.WriteString("Yes, you can laba right now.")
		} else {
			b.WriteString("No, you can't laba right now")
		}
	}
	return b.String()
}

// FormatToday renders a TodayResult as a chat reply.
func FormatToday(res TodayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TODAY'S FORECAST (%s)\n", res.Date.Format("2006-01-02"))
	b.WriteString(FormatWindow(res.Morning.Window))
	b.WriteString(FormatWindow(res.Noon.Window))

	if res.CanLaba {
		b.WriteString("\nYou can laba today!")
	} else {
		b.WriteString("\nYou cannot laba today. The clothes will not dry. Try again tomorrow.")
	}
	return b.String()
}
