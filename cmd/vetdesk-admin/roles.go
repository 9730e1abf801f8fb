package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/vetdesk/vetdesk/internal/data"
	"github.com/vetdesk/vetdesk/internal/service"
)

type normalizeRolesOptions struct {
	DryRun bool
}

func parseNormalizeRolesFlags(args []string) (normalizeRolesOptions, error) {
	fs := flag.NewFlagSet("normalize-roles", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts normalizeRolesOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Report the changes without writing them")
	if err := fs.Parse(args); err != nil {
		return normalizeRolesOptions{}, err
	}
	return opts, nil
}

func runNormalizeRoles(cmdCtx *commandContext, args []string) error {
	opts, err := parseNormalizeRolesFlags(args)
	if err != nil {
		return err
	}

	conns, err := connectInfra(cmdCtx.Ctx, cmdCtx.Logger, &cmdCtx.Config, false)
	if err != nil {
		return err
	}
	defer conns.close(cmdCtx.Logger)

	report, err := service.NormalizeStoredRoles(cmdCtx.Ctx, data.NewRoleRepo(conns.DB), opts.DryRun, cmdCtx.Logger)
	if err != nil {
		return err
	}
	return printRoleReport(cmdCtx, report)
}

func printRoleReport(cmdCtx *commandContext, report *service.RoleNormalizationReport) error {
	verb := "normalized"
	if report.DryRun {
		verb = "would normalize"
	}
	tw := tabwriter.NewWriter(cmdCtx.Stdout, 0, 4, 2, ' ', 0)
	for _, c := range report.Changed {
		if err := writef(tw, "%s\t%s\t%q -> %s\n", verb, c.Email, c.From, c.To); err != nil {
			return err
		}
	}
	for _, u := range report.Unmapped {
		if err := writef(tw, "unmapped\t%s\t%q\n", u.Email, u.Raw); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return writef(cmdCtx.Stdout, "%d changed, %d unmapped\n", len(report.Changed), len(report.Unmapped))
}
