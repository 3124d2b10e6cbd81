package jobs

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// Salary extractor output columns.
const (
	ColSalaryLower = "salary_lower_bound"
	ColSalaryUpper = "salary_upper_bound"
	ColSalaryMid   = "salary_mid_point"
)

const (
	hoursPerYear    = 2080
	minAnnualSalary = 30000
	thousandsCutoff = 300 // smaller annual figures are read as thousands ("85k")
)

var digitRunRe = regexp.MustCompile(`\d+`)

// SalaryBounds holds the annualized bounds parsed from one salary text.
type SalaryBounds struct {
	Lower, Upper int64
	Mid          float64
}

// ParseSalary annualizes the numbers in text according to salaryType.
// ok is false when no plausible annual figure remains.
func ParseSalary(text, salaryType string) (b SalaryBounds, ok bool) {
	var values []int64
	switch salaryType {
	case "HourlyRate":
		head, _, _ := strings.Cut(text, ".")
		for _, n := range digitRuns(head) {
			if n > math.MaxInt64/hoursPerYear {
				continue
			}
			values = append(values, n*hoursPerYear)
		}
	case "AnnualPackage":
		clean := strings.NewReplacer("$", "", ",", "").Replace(text)
		for _, n := range digitRuns(clean) {
			if n < thousandsCutoff {
				n *= 1000
			}
			values = append(values, n)
		}
	default:
		return SalaryBounds{}, false
	}

	values = slices.DeleteFunc(values, func(v int64) bool { return v < minAnnualSalary })
	if len(values) == 0 {
		return SalaryBounds{}, false
	}

	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return SalaryBounds{
		Lower: slices.Min(values),
		Upper: slices.Max(values),
		Mid:   sum / float64(len(values)),
	}, true
}

func digitRuns(s string) []int64 {
	var out []int64
	for _, m := range digitRunRe.FindAllString(s, -1) {
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ExtractSalary adds salary bounds to jobs, joined by job_id. Rows without a
// usable salary get null bounds.
func ExtractSalary(jobs *frame.Frame) (*frame.Frame, error) {
	if err := jobs.Require("salary", "job_id", "salary", "salary_type"); err != nil {
		return nil, err
	}

	bounds := frame.New("job_id", ColSalaryLower, ColSalaryUpper, ColSalaryMid)
	for _, r := range jobs.Rows {
		text, ok1 := r["salary"].(string)
		typ, ok2 := r["salary_type"].(string)
		if !ok1 || !ok2 || !digitRunRe.MatchString(text) {
			continue
		}
		b, ok := ParseSalary(text, typ)
		if !ok {
			continue
		}
		bounds.Rows = append(bounds.Rows, frame.Row{
			"job_id":       r["job_id"],
			ColSalaryLower: b.Lower,
			ColSalaryUpper: b.Upper,
			ColSalaryMid:   b.Mid,
		})
	}

	out := jobs.Drop(ColSalaryLower, ColSalaryUpper, ColSalaryMid).LeftJoin(bounds, "job_id")
	return out, nil
}
