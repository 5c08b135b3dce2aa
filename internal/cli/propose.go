package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"servicecenter/internal/workflow"
)

type proposeFlags struct {
	from      string
	to        string
	cost      string
	reason    string
	ack       bool
	minReason int
}

// newProposeCommand evaluates a transition offline. It never touches the
// database, so it is safe to use when explaining a rejection to staff.
func newProposeCommand() *cobra.Command {
	var f proposeFlags
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Check whether a status transition would be allowed",
		Long: `Run the transition rules against a hypothetical ticket and print the
resulting request, or the rejection and exit 1.

Example:
  centerctl propose --from Completed --to Delivered --cost 500 --ack`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := workflow.ParseStatus(f.from)
			if err != nil {
				return err
			}
			to, err := workflow.ParseStatus(f.to)
			if err != nil {
				return err
			}
			var cost decimal.NullDecimal
			if f.cost != "" {
				d, err := decimal.NewFromString(f.cost)
				if err != nil {
					return fmt.Errorf("invalid --cost: %w", err)
				}
				cost = decimal.NewNullDecimal(d)
			}

			w := workflow.New(workflow.Policy{MinCancellationReasonLength: f.minReason})
			req, err := w.Propose(workflow.Proposal{
				Ticket:       workflow.Snapshot{ID: "dry-run", Status: from, Cost: cost},
				To:           to,
				Extra:        workflow.Extra{CancellationReason: f.reason},
				Acknowledged: f.ack,
			})
			if err != nil {
				var rej workflow.Rejection
				if errors.As(err, &rej) {
					kind := "precondition"
					var confirm *workflow.ConfirmationRequired
					if errors.As(err, &confirm) {
						kind = "confirmation required"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "rejected (%s) %s: %s\n", kind, rej.ReasonCode(), rej.ReasonCode().Message())
					return NewExitError(1)
				}
				return err
			}

			out := struct {
				workflow.TransitionRequest
				CostReset bool `json:"costReset"`
			}{req, req.ResetsCost()}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&f.from, "from", "", "current status, e.g. \"In Service\"")
	cmd.Flags().StringVar(&f.to, "to", "", "target status")
	cmd.Flags().StringVar(&f.cost, "cost", "", "current cost; omit for none")
	cmd.Flags().StringVar(&f.reason, "reason", "", "cancellation reason")
	cmd.Flags().BoolVar(&f.ack, "ack", false, "acknowledge the cost reset when leaving Completed")
	cmd.Flags().IntVar(&f.minReason, "min-reason", workflow.DefaultMinCancellationReasonLength, "minimum cancellation reason length")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
