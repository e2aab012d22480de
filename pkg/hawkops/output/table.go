package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	v1 "github.com/hawkops/hawkops/api/v1"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

func WriteApplicationTable(w io.Writer, apps []v1.Application) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tORGANIZATION\tCREATED\tUPDATED")
	for _, a := range apps {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, dash(a.OrganizationID), dash(a.CreatedAt), dash(a.UpdatedAt))
	}
	_ = tw.Flush()
}

func WriteScanTable(w io.Writer, scans []v1.Scan) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tAPPLICATION\tSTATUS\tFINDINGS\tCREATED\tCOMPLETED")
	for _, s := range scans {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.ApplicationID, s.Status, findings(s.FindingsCount), dash(s.CreatedAt), dashPtr(s.CompletedAt))
	}
	_ = tw.Flush()
}

// WriteScanDetail prints a single scan as aligned key/value lines.
func WriteScanDetail(w io.Writer, s *v1.Scan) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintf(tw, "ID:\t%s\n", s.ID)
	_, _ = fmt.Fprintf(tw, "Application:\t%s\n", s.ApplicationID)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", s.Status)
	_, _ = fmt.Fprintf(tw, "Created:\t%s\n", dash(s.CreatedAt))
	if s.CompletedAt != nil {
		_, _ = fmt.Fprintf(tw, "Completed:\t%s\n", *s.CompletedAt)
	}
	if s.FindingsCount != nil {
		_, _ = fmt.Fprintf(tw, "Findings:\t%d\n", *s.FindingsCount)
	}
	_ = tw.Flush()
}

func WriteTeamTable(w io.Writer, teams []v1.Team) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tORGANIZATION")
	for _, t := range teams {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, dash(t.OrganizationID))
	}
	_ = tw.Flush()
}

func WriteUserTable(w io.Writer, users []v1.User) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tEMAIL\tNAME")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Email, dashPtr(u.Name))
	}
	_ = tw.Flush()
}

func findings(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dashPtr(s *string) string {
	if s == nil {
		return "-"
	}
	return dash(*s)
}
