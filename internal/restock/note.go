package restock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Note is a parsed supplier delivery note.
type Note struct {
	DeliveredOn time.Time // zero when the note has no date line
	Lines       []Line
	Warnings    []string // lines that failed to parse
}

// Line is one delivered ingredient, e.g. "tapioca pearls 20cup".
type Line struct {
	Number      int // 1-based line number in the note
	RawText     string
	Description string
	Qty         decimal.Decimal
	Unit        string
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Known quantity units. A number followed by anything else is part of the
// description ("2x", "500ml" is fine, "v2" is not a quantity).
var qtyUnits = map[string]bool{
	"kg": true, "g": true, "l": true, "ml": true, "oz": true, "lb": true,
	"cup": true, "cups": true, "scoop": true, "scoops": true,
	"pump": true, "pumps": true, "unit": true, "units": true,
	"pcs": true, "box": true, "bag": true, "bags": true, "btl": true,
}

// ParseNote parses a delivery note. The first non-empty line may be a date
// ("2026-10-15", "15 oct" or "oct 15"); every other line is an item with a
// quantity. now resolves the year of short dates.
func ParseNote(text string, now time.Time) (*Note, error) {
	note := &Note{}
	first := true

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if first {
			first = false
			if date, ok := parseDateLine(line, now); ok {
				note.DeliveredOn = date
				continue
			}
		}

		item, err := parseItemLine(line)
		if err != nil {
			note.Warnings = append(note.Warnings, fmt.Sprintf("line %d skipped: %v", i+1, err))
			continue
		}
		item.Number = i + 1
		note.Lines = append(note.Lines, *item)
	}

	if len(note.Lines) == 0 {
		return nil, fmt.Errorf("no items found in note")
	}
	return note, nil
}

// parseDateLine accepts ISO dates and "15 oct" / "oct 15".
func parseDateLine(line string, now time.Time) (time.Time, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	if t, err := time.Parse(time.DateOnly, line); err == nil {
		return t, true
	}

	parts := strings.Fields(line)
	if len(parts) != 2 {
		return time.Time{}, false
	}

	dayStr, monthStr := parts[0], parts[1]
	if _, ok := months[dayStr]; ok {
		dayStr, monthStr = monthStr, dayStr
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := months[monthStr]
	if !ok {
		return time.Time{}, false
	}

	parsed := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	// A December note entered in early January belongs to last year.
	if parsed.After(now.AddDate(0, 0, 30)) {
		parsed = time.Date(now.Year()-1, month, day, 0, 0, 0, 0, time.UTC)
	}
	return parsed, true
}

// parseItemLine splits a line into description and quantity. The quantity is
// either "20cup" or a bare number, optionally followed by a unit token.
func parseItemLine(line string) (*Line, error) {
	tokens := strings.Fields(strings.ToLower(line))

	var (
		qty        decimal.Decimal
		unit       string
		qtyFound   bool
		descTokens []string
	)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if qtyFound {
			descTokens = append(descTokens, tok)
			continue
		}
		if q, u, ok := parseQtyUnitToken(tok); ok {
			qty, unit, qtyFound = q, u, true
			continue
		}
		if q, err := decimal.NewFromString(tok); err == nil {
			qty, qtyFound = q, true
			if i+1 < len(tokens) && qtyUnits[tokens[i+1]] {
				unit = tokens[i+1]
				i++
			}
			continue
		}
		descTokens = append(descTokens, tok)
	}

	if !qtyFound {
		return nil, fmt.Errorf("no quantity in %q", line)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("quantity must be > 0 in %q", line)
	}
	if len(descTokens) == 0 {
		return nil, fmt.Errorf("no ingredient in %q", line)
	}

	return &Line{
		RawText:     line,
		Description: strings.Join(descTokens, " "),
		Qty:         qty,
		Unit:        unit,
	}, nil
}

// parseQtyUnitToken parses "20cup" into (20, "cup", true). Only known units match.
func parseQtyUnitToken(tok string) (decimal.Decimal, string, bool) {
	digitEnd := 0
	for i, r := range tok {
		if unicode.IsDigit(r) || r == '.' {
			digitEnd = i + 1
		} else {
			break
		}
	}
	if digitEnd == 0 || digitEnd == len(tok) {
		return decimal.Zero, "", false
	}

	unit := tok[digitEnd:]
	if !qtyUnits[unit] {
		return decimal.Zero, "", false
	}
	qty, err := decimal.NewFromString(tok[:digitEnd])
	if err != nil {
		return decimal.Zero, "", false
	}
	return qty, unit, true
}
