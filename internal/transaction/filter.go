package transaction

import (
	"slices"
	"sort"
	"strings"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/shopspring/decimal"
)

type DateRangeMode int

const (
	AllDates DateRangeMode = iota
	ThisMonth
	LastMonth
	CustomRange
)

var dateRangeModeNames = map[DateRangeMode]string{
	AllDates:    "all",
	ThisMonth:   "this_month",
	LastMonth:   "last_month",
	CustomRange: "custom",
}

func (m DateRangeMode) String() string {
	if name, ok := dateRangeModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseDateRangeMode accepts the query form of a mode; the empty string means AllDates.
func ParseDateRangeMode(s string) (DateRangeMode, bool) {
	if s == "" {
		return AllDates, true
	}
	for mode, name := range dateRangeModeNames {
		if name == s {
			return mode, true
		}
	}
	return AllDates, false
}

// DateRange selects transactions by date. Only CustomRange carries an interval.
type DateRange struct {
	mode   DateRangeMode
	custom calendar.Range
}

func Unrestricted() DateRange { return DateRange{mode: AllDates} }
func CurrentMonth() DateRange { return DateRange{mode: ThisMonth} }
func PreviousMonth() DateRange { return DateRange{mode: LastMonth} }
func Between(start, end calendar.Date) DateRange {
	return DateRange{mode: CustomRange, custom: calendar.NewRange(start, end)}
}

func (d DateRange) Mode() DateRangeMode { return d.mode }

// Resolve returns the inclusive interval the mode denotes on today. The
// boolean is false when no date constraint applies.
func (d DateRange) Resolve(today calendar.Date) (calendar.Range, bool) {
	switch d.mode {
	case ThisMonth:
		return today.MonthKey().Range(), true
	case LastMonth:
		return today.MonthKey().Prev().Range(), true
	case CustomRange:
		return d.custom, true
	default:
		return calendar.Range{}, false
	}
}

// Filter is the conjunction of every set dimension. The zero value matches everything.
type Filter struct {
	Search     string
	Dates      DateRange
	Type       *finance.TransactionType
	CategoryID *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" &&
		f.Dates.mode == AllDates &&
		f.Type == nil &&
		f.CategoryID == nil &&
		f.MinAmount == nil &&
		f.MaxAmount == nil
}

// Apply returns the transactions matching f, in input order. The input is
// never modified.
func Apply(txs []finance.Transaction, f Filter, categories finance.CategoryIndex, today calendar.Date) []finance.Transaction {
	if f.IsEmpty() {
		return slices.Clone(txs)
	}

	m := newMatcher(f, categories, today)
	out := make([]finance.Transaction, 0, len(txs))
	for _, t := range txs {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type matcher struct {
	f          Filter
	categories finance.CategoryIndex
	search     string
	period     calendar.Range
	hasPeriod  bool
}

func newMatcher(f Filter, categories finance.CategoryIndex, today calendar.Date) matcher {
	period, ok := f.Dates.Resolve(today)
	return matcher{
		f:          f,
		categories: categories,
		search:     strings.ToLower(strings.TrimSpace(f.Search)),
		period:     period,
		hasPeriod:  ok,
	}
}

func (m matcher) match(t finance.Transaction) bool {
	if m.hasPeriod && !m.period.Contains(t.Date) {
		return false
	}
	if m.f.Type != nil && t.Type != *m.f.Type {
		return false
	}
	if m.f.CategoryID != nil && !t.HasCategory(*m.f.CategoryID) {
		return false
	}
	if m.f.MinAmount != nil && t.Amount.LessThan(*m.f.MinAmount) {
		return false
	}
	if m.f.MaxAmount != nil && t.Amount.GreaterThan(*m.f.MaxAmount) {
		return false
	}
	return m.search == "" || m.matchText(t)
}

func (m matcher) matchText(t finance.Transaction) bool {
	if strings.Contains(strings.ToLower(t.Description), m.search) {
		return true
	}
	if c, ok := m.categories.Lookup(t.CategoryID); ok && strings.Contains(strings.ToLower(c.Name), m.search) {
		return true
	}
	return strings.Contains(t.Amount.String(), m.search)
}

type DayGroup struct {
	Date         calendar.Date         `json:"date"`
	Transactions []finance.Transaction `json:"transactions"`
	Income       decimal.Decimal       `json:"income"`
	Expense      decimal.Decimal       `json:"expense"`
}

// GroupByDay buckets transactions by date, most recent day first. Within a
// day the input order is kept.
func GroupByDay(txs []finance.Transaction) []DayGroup {
	index := make(map[calendar.Date]int)
	groups := make([]DayGroup, 0)
	for _, t := range txs {
		i, ok := index[t.Date]
		if !ok {
			i = len(groups)
			index[t.Date] = i
			groups = append(groups, DayGroup{Date: t.Date, Income: decimal.Zero, Expense: decimal.Zero})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, t)
		switch t.Type {
		case finance.Income:
			g.Income = g.Income.Add(t.Amount)
		case finance.Expense:
			g.Expense = g.Expense.Add(t.Amount)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})
	return groups
}
