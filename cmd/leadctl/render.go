package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"leadhub/internal/dedup/models"
	id "leadhub/pkg/domain"
)

func renderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func renderStats(w io.Writer, pID string, stats *models.Stats) error {
	data := pterm.TableData{
		{"Product", "Total leads", "Duplicates", "Merged", "Final"},
		{pID, itoa(stats.TotalLeads), itoa(stats.DuplicatesFound), itoa(stats.MergedCount), itoa(stats.FinalCount)},
	}
	if err := renderTable(w, data); err != nil {
		return err
	}
	if len(stats.MergeDetails) == 0 {
		return nil
	}

	details := pterm.TableData{{"Kept lead", "Merged leads"}}
	for _, d := range stats.MergeDetails {
		details = append(details, []string{d.KeptLeadID.String(), joinLeadIDs(d.MergedLeadIDs)})
	}
	return renderTable(w, details)
}

func renderOutcomes(w io.Writer, outcomes []models.ProductOutcome) error {
	data := pterm.TableData{{"Product", "Total leads", "Duplicates", "Merged", "Final", "Error"}}
	for _, o := range outcomes {
		if o.Stats == nil {
			data = append(data, []string{string(o.PID), "-", "-", "-", "-", o.Error})
			continue
		}
		s := o.Stats
		data = append(data, []string{string(o.PID), itoa(s.TotalLeads), itoa(s.DuplicatesFound), itoa(s.MergedCount), itoa(s.FinalCount), ""})
	}
	return renderTable(w, data)
}

func renderStatsInfo(w io.Writer, info *models.StatsInfo) error {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Total leads", itoa(info.TotalLeads)},
		{"Potential duplicates", itoa(info.PotentialDuplicates)},
	}
	fields := make([]string, 0, len(info.ByIdentifier))
	for field := range info.ByIdentifier {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		data = append(data, []string{"Shared " + field, itoa(info.ByIdentifier[field])})
	}
	return renderTable(w, data)
}

func renderPreview(w io.Writer, groups [][]models.ProductPreview) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No duplicate products found")
		return err
	}
	data := pterm.TableData{{"Group", "Keeps", "pId", "Name"}}
	for i, group := range groups {
		for j, p := range group {
			keep := ""
			if j == 0 {
				keep = "yes"
			}
			data = append(data, []string{itoa(i + 1), keep, string(p.PID), p.PName})
		}
	}
	return renderTable(w, data)
}

func joinLeadIDs(ids []id.LeadID) string {
	parts := make([]string, len(ids))
	for i, leadID := range ids {
		parts[i] = leadID.String()
	}
	return strings.Join(parts, ", ")
}

func itoa(n int) string { return strconv.Itoa(n) }
