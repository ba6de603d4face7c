package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"procurement/pkg/api"
	"procurement/pkg/client"
)

const dateLayout = "02/01/2006"

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printRequests(w io.Writer, rows []api.PurchaseRequest, categoryName func(string) string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  nessuna richiesta")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tUTENTE\tCATEGORIA\tQTA\tCOSTO\tSTATO\tDATA\tAPPROVATORE")
	for _, r := range rows {
		approver := "-"
		if r.Approver != nil {
			approver = r.Approver.Name()
		}
		date := "-"
		if !r.RequestedAt.IsZero() {
			date = r.RequestedAt.Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Owner.Name(), categoryName(r.CategoryID), r.Quantity,
			r.Cost.StringFixed(2), r.Status, date, approver)
	}
	tw.Flush()
}

func printCategories(w io.Writer, rows []api.Category) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  nessuna categoria")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDESCRIZIONE\tCOSTO UNITARIO")
	for _, c := range rows {
		unit := "-"
		if c.UnitCost.Valid {
			unit = c.UnitCost.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Description, unit)
	}
	tw.Flush()
}

func printStats(w io.Writer, s *api.RequestStats) {
	tw := table(w)
	fmt.Fprintln(tw, "STATO\tRICHIESTE\tTOTALE")
	for _, row := range s.ByStatus {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Status, row.Count, row.Total.StringFixed(2))
	}
	tw.Flush()
	fmt.Fprintf(w, "Totale approvato: %s\n", s.ApprovedTotal.StringFixed(2))
}

func printAudit(w io.Writer, p *client.AuditLogPage) {
	tw := table(w)
	fmt.Fprintln(tw, "DATA\tUTENTE\tAZIONE\tENTITA\tDETTAGLI")
	for _, l := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.CreatedAt, l.UserName, l.Action, l.EntityID, l.Details)
	}
	tw.Flush()
	fmt.Fprintf(w, "Pagina %d, %d voci su %d\n", p.Page, len(p.Items), p.Total)
}
