package schedule

import "fmt"

// KoreanHolidays is the built-in holiday source. Fixed-date holidays are
// generated for any year; lunar-calendar holidays (설날, 부처님오신날, 추석)
// shift every year and are carried as a per-year table. Years outside the
// table return an error so the calendar can degrade to weekend-only logic.
type KoreanHolidays struct{}

// Fixed solar-date public holidays, month-day.
var fixedHolidays = []string{
	"01-01", // 신정
	"03-01", // 삼일절
	"05-05", // 어린이날
	"06-06", // 현충일
	"08-15", // 광복절
	"10-03", // 개천절
	"10-09", // 한글날
	"12-25", // 성탄절
}

// Lunar-calendar holidays by year (including the adjacent Seollal/Chuseok
// days and substitute holidays as officially announced).
var lunarHolidays = map[int][]string{
	2025: {
		"01-28", "01-29", "01-30", // 설날 연휴
		"03-03", // 삼일절 대체공휴일
		"05-06", // 어린이날·부처님오신날 대체공휴일
		"10-05", "10-06", "10-07", "10-08", // 추석 연휴 및 대체공휴일
	},
	2026: {
		"02-16", "02-17", "02-18", // 설날 연휴
		"03-02", // 삼일절 대체공휴일
		"05-24", "05-25", // 부처님오신날 및 대체공휴일
		"08-17", // 광복절 대체공휴일
		"09-24", "09-25", "09-26", // 추석 연휴
		"10-05", // 개천절 대체공휴일
	},
	2027: {
		"02-06", "02-07", "02-08", "02-09", // 설날 연휴 및 대체공휴일
		"05-13", // 부처님오신날
		"08-16", // 광복절 대체공휴일
		"09-14", "09-15", "09-16", // 추석 연휴
		"10-04", // 개천절 대체공휴일
		"12-27", // 성탄절 대체공휴일
	},
}

func (KoreanHolidays) Holidays(year int) (map[string]bool, error) {
	lunar, ok := lunarHolidays[year]
	if !ok {
		return nil, fmt.Errorf("no lunar holiday table for %d", year)
	}

	out := make(map[string]bool, len(fixedHolidays)+len(lunar))
	for _, md := range fixedHolidays {
		out[fmt.Sprintf("%d-%s", year, md)] = true
	}
	for _, md := range lunar {
		out[fmt.Sprintf("%d-%s", year, md)] = true
	}
	return out, nil
}
