package metalsim

import "time"

// PurchaseDates produces the ordered, deduplicated sequence of purchase
// dates for a configuration, snapped to real trading dates. A generated date
// past the end of the price history is dropped.
func PurchaseDates(prices *PriceTable, start, end Date, freq Frequency, purchaseDay int) []Date {
	var raw []Date
	switch freq {
	case None:
		raw = []Date{start}
	case Weekly:
		raw = weeklyDates(start, end, time.Weekday(purchaseDay))
	case Monthly:
		raw = periodicDates(start, end, purchaseDay, 1)
	case Quarterly:
		raw = periodicDates(start, end, purchaseDay, 3)
	}

	dates := make([]Date, 0, len(raw))
	var previous Date
	for _, d := range raw {
		snapped, ok := prices.Resolve(d)
		if !ok {
			continue // past the end of history
		}
		if len(dates) > 0 && snapped == previous {
			continue
		}
		dates = append(dates, snapped)
		previous = snapped
	}
	return dates
}

// weeklyDates walks from start to the first configured weekday, then
// advances exactly 7 calendar days per purchase.
func weeklyDates(start, end Date, weekday time.Weekday) []Date {
	cursor := start
	for cursor.Weekday() != weekday && !cursor.After(end) {
		cursor = cursor.Add(1)
	}
	var dates []Date
	for !cursor.After(end) {
		dates = append(dates, cursor)
		cursor = cursor.Add(7)
	}
	return dates
}

// periodicDates emits one date per month (or per quarter with step 3) on a
// fixed day of month. The day is capped at 28 to avoid month-length edge
// cases.
func periodicDates(start, end Date, dayOfMonth, stepMonths int) []Date {
	d := dayOfMonth
	if d > 28 {
		d = 28
	}
	if d < 1 {
		d = 1
	}
	cursor := NewDate(start.Year(), start.Month(), d)
	if cursor.Before(start) {
		cursor = NewDate(cursor.Year(), cursor.Month()+time.Month(stepMonths), d)
	}
	var dates []Date
	for !cursor.After(end) {
		dates = append(dates, cursor)
		cursor = NewDate(cursor.Year(), cursor.Month()+time.Month(stepMonths), d)
	}
	return dates
}
