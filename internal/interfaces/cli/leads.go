package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/netellus-advisor/internal/application/leads"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Capture leads and sync them to the spreadsheet",
	}
	cmd.AddCommand(newLeadsSaveCmd(), newLeadsSyncCmd())
	return cmd
}

func newLeadsSaveCmd() *cobra.Command {
	var (
		fields map[string]string
		file   string
	)

	cmd := &cobra.Command{
		Use:     "save",
		Short:   "Save or update a lead",
		Example: `  advisor leads save -f docId=acme_01 -f email=ops@acme.example -f company=Acme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := leadFields(file, fields)
			if err != nil {
				return err
			}
			return runWithServices(cmd, func(ctx context.Context, cliCtx *CLIContext, svc Services) error {
				res, err := svc.Leads().SaveLead(ctx, all)
				if err != nil {
					return err
				}
				if cliCtx.OutputFormat == "json" {
					return PrintResult(cmd, res)
				}
				PrintSuccess(cmd, fmt.Sprintf("lead %s %s", res.ID, res.Status))
				return nil
			})
		},
	}
	cmd.Flags().StringToStringVarP(&fields, "field", "f", nil, "lead field as key=value; repeatable")
	cmd.Flags().StringVar(&file, "file", "", "JSON object of lead fields; --field values override it")
	return cmd
}

// leadFields merges the JSON file (if any) with the --field flags.
func leadFields(path string, flags map[string]string) (map[string]string, error) {
	out := make(map[string]string)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "read %s", path)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeSerialization, "decode %s: expected a JSON object of strings", path)
		}
	}
	for k, v := range flags {
		out[k] = v
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeLeadInvalid, "no lead fields given; use --field or --file")
	}
	return out, nil
}

func newLeadsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Write every stored lead to the spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithServices(cmd, func(ctx context.Context, cliCtx *CLIContext, svc Services) error {
				res, err := svc.Leads().SyncLeads(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, syncView{res})
			})
		},
	}
}

type syncView struct {
	r *leads.SyncResult
}

func (v syncView) JSONValue() interface{} { return v.r }

func (v syncView) TableHeaders() []string { return []string{"UPDATED", "APPENDED", "SKIPPED"} }

func (v syncView) TableRows() [][]string {
	return [][]string{{fmt.Sprint(v.r.Updated), fmt.Sprint(v.r.Appended), fmt.Sprint(v.r.Skipped)}}
}

func (v syncView) String() string {
	return fmt.Sprintf("Synced leads: %d updated, %d appended, %d skipped.", v.r.Updated, v.r.Appended, v.r.Skipped)
}
