package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dan-solli/cognis/pkg/audit"
	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/graph"
)

var (
	auditText    string
	auditAction  string
	resolveAsync bool
)

// demoQueries walks every answer category once.
var demoQueries = []string{
	"Show me the crypto transactions",
	"What evidence do we have?",
	"Give me the timeline",
	"Who is in the network?",
	"Summarize the case",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted investigation over the sample case",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Answer one investigator question with citations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List the audit trail, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

var hitTestCmd = &cobra.Command{
	Use:   "hittest [x] [y]",
	Short: "Select the entity drawn at a canvas coordinate",
	Args:  cobra.ExactArgs(2),
	RunE:  runHitTest,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the case report as JSON",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(cmd, s)

	out := cmd.OutOrStdout()
	if _, err := s.Login(ctx); err != nil {
		return err
	}

	if e, ok, err := s.SelectNodeAt(ctx, graph.Point{X: 200, Y: 200}); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "Selected %s (%s, %d connections)\n\n", e.DisplayName, e.Kind, e.Connections)
	}

	thread, err := s.NewThread()
	if err != nil {
		return err
	}
	for _, q := range demoQueries {
		f, err := thread.Submit(ctx, q)
		if err != nil {
			return err
		}
		a, err := f.Wait(ctx)
		if err != nil {
			return err
		}
		thread.Wait()
		printAnswer(out, a)
	}

	r, err := s.ExportReport(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Report: %d findings, %d source artifacts\n\n", len(r.Findings), len(r.Sources))

	if _, err := s.Logout(ctx); err != nil {
		return err
	}
	printEntries(out, s.Trail().Query(audit.Filter{}))
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(cmd, s)

	query := strings.Join(args, " ")

	var a citation.Answer
	if resolveAsync {
		thread, err := s.NewThread()
		if err != nil {
			return err
		}
		f, err := thread.Submit(ctx, query)
		if err != nil {
			return err
		}
		if a, err = f.Wait(ctx); err != nil {
			return err
		}
	} else if a, err = s.Ask(ctx, query); err != nil {
		return err
	}

	printAnswer(cmd.OutOrStdout(), a)
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(cmd, s)

	entries, err := s.QueryAudit(auditText, auditAction)
	if err != nil {
		return err
	}
	printEntries(cmd.OutOrStdout(), entries)
	return nil
}

func runHitTest(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid x coordinate %q: %w", args[0], err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid y coordinate %q: %w", args[1], err)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(cmd, s)

	out := cmd.OutOrStdout()
	e, ok, err := s.SelectNodeAt(ctx, graph.Point{X: x, Y: y})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "no entity at that position")
		return nil
	}
	fmt.Fprintf(out, "%s\t%s\t%s\tconnections=%d\tartifacts=%s\n",
		e.ID, e.Kind, e.DisplayName, e.Connections, strings.Join(e.ArtifactIDs, ","))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(cmd, s)

	for _, q := range demoQueries[:2] {
		if _, err := s.Ask(ctx, q); err != nil {
			return err
		}
	}
	r, err := s.ExportReport(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func printAnswer(w io.Writer, a citation.Answer) {
	fmt.Fprintf(w, "Q: %s\n[%s] %s\nSources: %s\n\n", a.Query, a.Category, a.Text, strings.Join(a.Citations, ", "))
}

func printEntries(w io.Writer, entries []audit.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tACTION\tUSER\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Timestamp.Format(time.DateTime), e.Action, e.Actor, e.Details)
	}
	tw.Flush()
}
