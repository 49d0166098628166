package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderComplaints(w io.Writer, views []domain.ComplaintView) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Category", "Priority", "Status", "Owner", "Created"})
	for _, v := range views {
		owner := v.OwnerID
		if v.Owner != nil && v.Owner.DisplayName != "" {
			owner = v.Owner.DisplayName
		}
		tw.AppendRow(table.Row{v.ID, v.Title, v.Category, v.Priority, v.Status.Normalized(), owner, v.CreatedAt.Format(time.RFC3339)})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(views)})
	tw.Render()
}

func renderStats(w io.Writer, stats domain.ComplaintStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Total", "Pending", "In progress", "Resolved", "Rejected"})
	tw.AppendRow(table.Row{stats.Total, stats.Pending, stats.InProgress, stats.Resolved, stats.Rejected})
	tw.Render()
}

func renderProfiles(w io.Writer, profiles []domain.Profile) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Role", "Name", "Email"})
	for _, p := range profiles {
		tw.AppendRow(table.Row{p.ID, p.Role, p.DisplayName, p.Email})
	}
	tw.Render()
}
