package weather

import (
	"time"
)

var manila = time.FixedZone("PST", 8*3600)

// seriesFrom builds an hourly series starting at start with one entry per code.
func seriesFrom(start time.Time, codes ...int) HourlySeries {
	s := HourlySeries{Location: start.Location()}
	for i, code := range codes {
		s.Times = append(s.Times, start.Add(time.Duration(i)*time.Hour))
		s.WeatherCodes = append(s.WeatherCodes, code)
		s.Temperatures = append(s.Temperatures, 25+float64(i)/10)
		s.PrecipitationProbability = append(s.PrecipitationProbability, i%100)
	}
	return s
}

// dayOf returns a 72 hour series starting at midnight of the given date, with
// every hour set to code.
func dayOf(year int, month time.Month, day int, code int) HourlySeries {
	codes := make([]int, 72)
	for i := range codes {
		codes[i] = code
	}
	return seriesFrom(time.Date(year, month, day, 0, 0, 0, 0, manila), codes...)
}

func windowOf(codes ...int) Window {
	return Window{Start: 0, End: len(codes), WeatherCodes: codes}
}
