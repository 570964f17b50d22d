package contract

import (
	"math"
	"strconv"
	"strings"
)

// LoanAmount is the financed portion of the offer price.
func LoanAmount(offerPrice, downPaymentPercent float64) float64 {
	return offerPrice * (1 - downPaymentPercent/100)
}

// EarnestMoney is the good-faith deposit: 1% of the offer price rounded to
// the nearest whole dollar.
func EarnestMoney(offerPrice float64) float64 {
	return math.Round(offerPrice * 0.01)
}

// FormatUSD renders an amount as a dollar figure with thousands grouping and
// no decimals, e.g. 450000 -> "$450,000". Fractional amounts round to the
// nearest dollar.
func FormatUSD(amount float64) string {
	n := int64(math.Round(amount))
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

var onesWords = []string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// NumberToWords spells out a non-negative integer in English. Zero-valued
// magnitude groups are omitted: 450000 -> "four hundred fifty thousand".
func NumberToWords(n int) string {
	switch {
	case n == 0:
		return "zero"
	case n < 20:
		return onesWords[n]
	case n < 100:
		s := tensWords[n/10]
		if n%10 != 0 {
			s += "-" + onesWords[n%10]
		}
		return s
	case n < 1000:
		s := onesWords[n/100] + " hundred"
		if n%100 != 0 {
			s += " " + NumberToWords(n%100)
		}
		return s
	case n < 1000000:
		s := NumberToWords(n/1000) + " thousand"
		if n%1000 != 0 {
			s += " " + NumberToWords(n%1000)
		}
		return s
	default:
		s := NumberToWords(n/1000000) + " million"
		if n%1000000 != 0 {
			s += " " + NumberToWords(n%1000000)
		}
		return s
	}
}
