package app

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/propverify/internal/cmd/output"
	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/normalize"
	"github.com/agentstation/propverify/pkg/regions"
)

// NewVerifyCommand creates the verify command.
func (a *App) NewVerifyCommand() *cobra.Command {
	var showProvenance, textReport bool

	cmd := &cobra.Command{
		Use:     "verify <propertyId>",
		GroupID: "core",
		Short:   "Look a property up in every registry and store the unified record",
		Long: `Verify queries all four registries concurrently, merges the records found
into one unified property and upserts it. The stored record replaces any
previous one and its revision is incremented.`,
		Example: `  propverify verify PROP-1
  propverify verify PROP-1 --provenance
  propverify verify PROP-1 --report
  propverify verify PROP-1 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			propertyID, err := checkPropertyID(args[0])
			if err != nil {
				return err
			}
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd, a.config.LookupTimeout+constants.StoreTimeout)
			defer cancel()

			v, err := a.Verifier(ctx)
			if err != nil {
				return err
			}
			result, err := v.Verify(ctx, propertyID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if textReport {
				_, err := fmt.Fprint(w, result.Report().String())
				return err
			}
			if !output.IsTabular(format) {
				if showProvenance {
					return output.NewFormatter(format).Format(w, result)
				}
				return output.NewFormatter(format).Format(w, result.Property)
			}

			data, err := output.PropertyToTableData(result.Property)
			if err != nil {
				return err
			}
			if err := output.NewFormatter(format).Format(w, data); err != nil {
				return err
			}
			if !showProvenance {
				return nil
			}
			rp, ok := v.Report(propertyID)
			if !ok {
				return nil
			}
			fmt.Fprintln(w)
			return output.NewFormatter(format).Format(w, output.ProvenanceToTableData(rp))
		},
	}

	cmd.Flags().BoolVar(&showProvenance, "provenance", false, "also show which registry supplied each field")
	cmd.Flags().BoolVar(&textReport, "report", false, "print the provenance report of this verification as text")
	return cmd
}

// NewGetCommand creates the get command.
func (a *App) NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get <propertyId>",
		GroupID: "core",
		Short:   "Show the stored unified record of a property",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			propertyID, err := checkPropertyID(args[0])
			if err != nil {
				return err
			}
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd, constants.StoreTimeout)
			defer cancel()

			v, err := a.Verifier(ctx)
			if err != nil {
				return err
			}
			p, err := v.Property(ctx, propertyID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !output.IsTabular(format) {
				return output.NewFormatter(format).Format(w, p)
			}
			data, err := output.PropertyToTableData(p)
			if err != nil {
				return err
			}
			return output.NewFormatter(format).Format(w, data)
		},
	}
}

// regionRow is the structured form of one region table entry.
type regionRow struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// NewRegionsCommand creates the regions command.
func (a *App) NewRegionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "regions",
		GroupID: "reference",
		Short:   "List the region codes used to derive state names",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			table := regions.Default()
			if output.IsTabular(format) {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.RegionsToTableData(table))
			}

			rows := make([]regionRow, 0, len(table))
			for _, code := range table.Codes() {
				rows = append(rows, regionRow{Code: code, Name: table.Name(code)})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), rows)
		},
	}
}

// NewNormalizeDateCommand creates the normalize-date command.
func (a *App) NewNormalizeDateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "normalize-date <value>",
		GroupID: "reference",
		Short:   "Print a registry date in canonical YYYY-MM-DD form",
		Long: `Normalize a date the way registry records are normalized during
unification. Values that are not a recognizable date print as ` + normalize.NoData + `.`,
		Example: `  propverify normalize-date 25/12/2023
  propverify normalize-date "December 25, 2023"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := normalize.ParseDate(strings.Join(args, " "))
			if strict && !result.OK {
				return errors.NewValidationError("date", args, "not a recognizable date")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return err
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the value cannot be parsed")
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("propverify %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}

func (a *App) outputFormat() (output.Format, error) {
	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return "", err
	}
	return output.DetectFormat(string(format)), nil
}

func checkPropertyID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewValidationError("propertyId", id, "cannot be empty")
	}
	if len(id) > constants.MaxPropertyIDLength {
		return "", errors.NewValidationError("propertyId", id,
			fmt.Sprintf("must be at most %d characters", constants.MaxPropertyIDLength))
	}
	if strings.Contains(id, ":") {
		return "", errors.NewValidationError("propertyId", id, "may not contain ':'")
	}
	return id, nil
}
