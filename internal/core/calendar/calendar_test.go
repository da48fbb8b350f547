package calendar_test

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Calendar", func() {
	Describe("Date", func() {
		It("should parse and format YYYY-MM-DD", func() {
			d, err := calendar.ParseDate("2024-06-02")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(calendar.Date{Year: 2024, Month: time.June, Day: 2}))
			Expect(d.String()).To(Equal("2024-06-02"))
		})

		It("should reject malformed input", func() {
			_, err := calendar.ParseDate("2024/06/02")
			Expect(err).To(HaveOccurred())
		})

		It("should compare chronologically", func() {
			a := calendar.MustParseDate("2023-12-31")
			b := calendar.MustParseDate("2024-01-01")
			Expect(a.Before(b)).To(BeTrue())
			Expect(b.After(a)).To(BeTrue())
			Expect(a.Compare(a)).To(Equal(0))
		})

		It("should count days across month ends", func() {
			a := calendar.MustParseDate("2024-02-27")
			Expect(a.AddDays(3).String()).To(Equal("2024-03-01"))
			Expect(a.DaysUntil(calendar.MustParseDate("2024-03-01"))).To(Equal(3))
		})

		It("should round-trip through JSON as a string", func() {
			raw, err := json.Marshal(calendar.MustParseDate("2024-06-01"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal(`"2024-06-01"`))

			var d calendar.Date
			Expect(json.Unmarshal(raw, &d)).To(Succeed())
			Expect(d.String()).To(Equal("2024-06-01"))
		})
	})

	Describe("Month", func() {
		It("should know its length including leap years", func() {
			Expect(calendar.MustParseMonth("2024-02").Days()).To(Equal(29))
			Expect(calendar.MustParseMonth("2023-02").Days()).To(Equal(28))
			Expect(calendar.MustParseMonth("2024-06").Days()).To(Equal(30))
		})

		It("should step across year boundaries", func() {
			Expect(calendar.MustParseMonth("2024-01").Prev().String()).To(Equal("2023-12"))
			Expect(calendar.MustParseMonth("2024-11").AddMonths(3).String()).To(Equal("2025-02"))
		})

		It("should expose its inclusive range", func() {
			r := calendar.MustParseMonth("2024-06").Range()
			Expect(r.Start.String()).To(Equal("2024-06-01"))
			Expect(r.End.String()).To(Equal("2024-06-30"))
			Expect(r.Days()).To(Equal(30))
		})
	})

	Describe("windows", func() {
		It("should build trailing months oldest first", func() {
			months := calendar.TrailingMonths(calendar.MustParseMonth("2024-02"), 4)
			keys := make([]string, len(months))
			for i, m := range months {
				keys[i] = m.String()
			}
			Expect(keys).To(Equal([]string{"2023-11", "2023-12", "2024-01", "2024-02"}))
		})

		It("should build the twelve months of a year", func() {
			months := calendar.YearMonths(2024)
			Expect(months).To(HaveLen(12))
			Expect(months[0].String()).To(Equal("2024-01"))
			Expect(months[11].String()).To(Equal("2024-12"))
		})
	})

	Describe("Range", func() {
		It("should be inclusive on both ends", func() {
			r := calendar.NewRange(calendar.MustParseDate("2024-06-01"), calendar.MustParseDate("2024-06-10"))
			Expect(r.Contains(calendar.MustParseDate("2024-06-01"))).To(BeTrue())
			Expect(r.Contains(calendar.MustParseDate("2024-06-10"))).To(BeTrue())
			Expect(r.Contains(calendar.MustParseDate("2024-06-11"))).To(BeFalse())
		})

		It("should contain nothing when start is after end", func() {
			r := calendar.NewRange(calendar.MustParseDate("2024-06-10"), calendar.MustParseDate("2024-06-01"))
			Expect(r.IsEmpty()).To(BeTrue())
			Expect(r.Days()).To(Equal(0))
			Expect(r.Contains(calendar.MustParseDate("2024-06-05"))).To(BeFalse())
		})
	})
})
