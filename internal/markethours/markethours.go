// Package markethours gates polling on the instrument's trading session.
//
// Crypto pairs trade around the clock; US-listed equities only during NYSE
// regular hours. Polling outside the session wastes requests on windows
// that cannot contain new candles.
package markethours

import (
	"strings"
	"time"
)

// ET is the US Eastern time zone used for NYSE session math. The IANA zone
// handles daylight saving.
var ET = mustLoad("America/New_York")

// NYSE regular session hours in ET.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// UTC-5 fallback when the zone database is unavailable.
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// IsCryptoTicker reports whether ticker names a 24/7 crypto pair
// (Yahoo-style "BTC-USD", "ETH-EUR").
func IsCryptoTicker(ticker string) bool {
	i := strings.IndexByte(ticker, '-')
	if i <= 0 || i == len(ticker)-1 {
		return false
	}
	switch ticker[i+1:] {
	case "USD", "EUR", "GBP", "USDT", "BTC", "ETH":
		return true
	}
	return false
}

// IsSessionOpen reports whether the instrument can produce new candles at t.
// Crypto is always open; equities follow NYSE regular hours Mon-Fri.
func IsSessionOpen(ticker string, t time.Time) bool {
	if IsCryptoTicker(ticker) {
		return true
	}
	et := t.In(ET)
	wd := et.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hm := et.Hour()*60 + et.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// NextOpen returns the next session open at or after t. For crypto it
// returns t unchanged.
func NextOpen(ticker string, t time.Time) time.Time {
	if IsCryptoTicker(ticker) {
		return t
	}
	et := t.In(ET)
	for {
		open := time.Date(et.Year(), et.Month(), et.Day(), OpenHour, OpenMinute, 0, 0, ET)
		wd := open.Weekday()
		if wd != time.Saturday && wd != time.Sunday && et.Before(open) {
			return open
		}
		et = time.Date(et.Year(), et.Month(), et.Day(), 0, 0, 0, 0, ET).Add(24 * time.Hour)
	}
}
