package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/search/opensearch"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

func newCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Browse and load case studies",
	}
	cmd.AddCommand(newCasesListCmd(), newCasesImportCmd())
	return cmd
}

func newCasesListCmd() *cobra.Command {
	var industry string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cases recorded for an industry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithServices(cmd, func(ctx context.Context, cliCtx *CLIContext, svc Services) error {
				listing, err := svc.Advisory().ListIndustryCases(ctx, industry)
				if err != nil {
					return err
				}
				return PrintResult(cmd, listingView{listing})
			})
		},
	}
	cmd.Flags().StringVarP(&industry, "industry", "i", "", "exact industry label; empty lists any cases")
	return cmd
}

type listingView struct {
	l *advisory.CaseListing
}

func (v listingView) JSONValue() interface{} { return v.l }

func (v listingView) TableHeaders() []string {
	return []string{"#", "INDUSTRY", "SYSTEM", "ACTION", "CARBON", "ENERGY"}
}

func (v listingView) TableRows() [][]string {
	rows := make([][]string, len(v.l.Cases))
	for i, c := range v.l.Cases {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncate(c.Industry, 16),
			truncate(c.SystemName, 24),
			truncate(c.ActionType, 16),
			formatValue(c.CarbonValue),
			formatValue(c.EnergyValue),
		}
	}
	return rows
}

func (v listingView) String() string {
	if v.l.Count == 0 {
		return fmt.Sprintf("No cases found for %q.", v.l.Industry)
	}
	return fmt.Sprintf("%d case(s) for %q\n\n%s", v.l.Count, v.l.Industry,
		FormatTable(v.TableHeaders(), v.TableRows()))
}

type importOptions struct {
	file       string
	collection string
	skipCreate bool
}

func newCasesImportCmd() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-load case documents from a JSON file",
		Long: "Reads a JSON array of case documents keyed by the configured field names\n" +
			"and indexes them into the case store.  Requires direct backend access.",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readCaseFile(opts.file)
			if err != nil {
				return err
			}
			return runWithServices(cmd, func(ctx context.Context, cliCtx *CLIContext, svc Services) error {
				idx := svc.Indexer()
				if idx == nil {
					return errors.New(errors.ErrCodeFeatureDisabled, "cases import needs direct backend access; omit --server")
				}
				collection := opts.collection
				if collection == "" {
					collection = cliCtx.Config.Advisory.Collection
				}
				if !opts.skipCreate {
					created, err := idx.EnsureIndex(ctx, collection)
					if err != nil {
						return err
					}
					if created {
						cliCtx.Logger.Info("created case index", logging.String("collection", collection))
					}
				}
				res, err := idx.BulkIndex(ctx, collection, docs)
				if err != nil {
					return err
				}
				return PrintResult(cmd, importView{res})
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "JSON file holding an array of case documents (required)")
	f.StringVar(&opts.collection, "collection", "", "target collection (default: advisory.collection)")
	f.BoolVar(&opts.skipCreate, "skip-create", false, "do not create the index when it is missing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readCaseFile(path string) ([]casestudy.FieldMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "read %s", path)
	}
	var docs []casestudy.FieldMap
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeSerialization, "decode %s: expected a JSON array of objects", path)
	}
	if len(docs) == 0 {
		return nil, errors.Newf(errors.ErrCodeBadRequest, "%s holds no documents", path)
	}
	return docs, nil
}

type importView struct {
	r *opensearch.BulkResult
}

func (v importView) JSONValue() interface{} { return v.r }

func (v importView) TableHeaders() []string { return []string{"POSITION", "TYPE", "REASON"} }

func (v importView) TableRows() [][]string {
	rows := make([][]string, len(v.r.Errors))
	for i, e := range v.r.Errors {
		rows[i] = []string{strconv.Itoa(e.Position), e.ErrorType, truncate(e.Reason, 60)}
	}
	return rows
}

func (v importView) String() string {
	s := fmt.Sprintf("Indexed %d document(s), %d failed.", v.r.Succeeded, v.r.Failed)
	if v.r.Failed > 0 {
		s += "\n\n" + FormatTable(v.TableHeaders(), v.TableRows())
	}
	return s
}
