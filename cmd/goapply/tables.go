package main

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goapply/goapply/internal/platform"
	"github.com/goapply/goapply/internal/types"
	"github.com/goapply/goapply/internal/utils"
	"github.com/goodsign/monday"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const dateLayout = "Mon 2 Jan 2006 15:04"

var titleCaser = cases.Title(language.English)

func platformName(p types.Platform) string {
	return titleCaser.String(string(p))
}

func formatDate(t time.Time, locale string) string {
	if t.IsZero() {
		return "-"
	}
	return monday.Format(t.Local(), dateLayout, monday.Locale(locale))
}

func printSummary(w io.Writer, sums []types.RunSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Platform", "Applied", "Target", "Failures", "Pages", "State", "Error"})
	total := types.RunSummary{}
	for _, s := range sums {
		total.Applied += s.Applied
		total.Target += s.Target
		total.NrFailures += s.NrFailures
		total.Pages += s.Pages
		if err := table.Append([]string{
			platformName(s.Platform),
			strconv.Itoa(s.Applied),
			strconv.Itoa(s.Target),
			strconv.Itoa(s.NrFailures),
			strconv.Itoa(s.Pages),
			s.State,
			utils.ShortenString(s.Error, 60),
		}); err != nil {
			return err
		}
	}
	if len(sums) > 1 {
		if err := table.Append([]string{
			"Total",
			strconv.Itoa(total.Applied),
			strconv.Itoa(total.Target),
			strconv.Itoa(total.NrFailures),
			strconv.Itoa(total.Pages),
			"",
			"",
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func printHistory(w io.Writer, recs []types.ApplicationRecord, locale string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Applied At", "Platform", "Job", "Company", "Location"})
	for _, r := range recs {
		if err := table.Append([]string{
			formatDate(r.AppliedAt, locale),
			platformName(r.Platform),
			utils.ShortenString(r.JobTitle, 40),
			utils.ShortenString(r.Company, 30),
			utils.ShortenString(r.Location, 30),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func printPlatforms(w io.Writer, reg *platform.Registry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Platform", "Domain", "Jobs URL", "Filters"})
	for _, p := range reg.Platforms() {
		a, err := reg.Get(p)
		if err != nil {
			return err
		}
		name := a.DisplayName
		if name == "" {
			name = platformName(p)
		}
		if err := table.Append([]string{name, a.Domain, a.JobsURL, filterSummary(a)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// filterSummary lists the filters an adapter can apply.
func filterSummary(a *platform.Adapter) string {
	var names []string
	if len(a.Filters.EasyApply) > 0 {
		names = append(names, "easy apply")
	}
	if len(a.Filters.DatePostedControl) > 0 {
		names = append(names, "date posted")
	}
	if len(a.Filters.WorkplaceControl) > 0 {
		names = append(names, "workplace")
	}
	if len(a.Filters.CategoryControl) > 0 {
		names = append(names, "categories")
	}
	if len(a.Filters.ExperienceControl) > 0 {
		names = append(names, "experience")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
