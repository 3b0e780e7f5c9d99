package commands

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"librarydesk/internal/events"
	"librarydesk/internal/model"
	"librarydesk/internal/service"
)

// borrowCmd lends a copy on behalf of a user
var borrowCmd = &cobra.Command{
	Use:   "borrow <username> <book-id>",
	Short: "Borrow a book for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoan(cmd, args, func(ledger service.LedgerService, username string, bookID int64) (*model.Loan, error) {
			return ledger.Borrow(cmd.Context(), username, bookID)
		})
	},
}

// returnCmd closes a user's open loan
var returnCmd = &cobra.Command{
	Use:   "return <username> <book-id>",
	Short: "Return a book for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoan(cmd, args, func(ledger service.LedgerService, username string, bookID int64) (*model.Loan, error) {
			return ledger.Return(cmd.Context(), username, bookID)
		})
	},
}

// overdueCmd reports every overdue loan
var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue loans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		ledger := newLedger(e)
		views, err := ledger.Overdue(cmd.Context())
		if err != nil {
			return err
		}
		return printLoans(cmd.OutOrStdout(), views)
	},
}

func init() {
	rootCmd.AddCommand(borrowCmd, returnCmd, overdueCmd)
}

func newLedger(e *env) service.LedgerService {
	var publisher events.Publisher = events.NopPublisher{}
	if e.cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(e.cfg.AMQPURL)
		if err != nil {
			log.Printf("events: amqp unavailable, loan events disabled: %v", err)
		} else {
			publisher = p
			e.closers = append(e.closers, p.Close)
		}
	}
	return service.NewLedgerService(e.store, e.cache, publisher, service.PolicyFromConfig(e.cfg))
}

func runLoan(cmd *cobra.Command, args []string, op func(service.LedgerService, string, int64) (*model.Loan, error)) error {
	bookID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || bookID <= 0 {
		return fmt.Errorf("invalid book id %q", args[1])
	}

	e, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()

	loan, err := op(newLedger(e), args[0], bookID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(loan)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "loan %s user=%s book=%d due=%s\n",
		loan.ID, loan.UserID, loan.BookID, loan.DueAt.Format("2006-01-02"))
	return nil
}

func printLoans(out io.Writer, views []model.LoanView) error {
	if jsonOutput {
		return json.NewEncoder(out).Encode(views)
	}
	if len(views) == 0 {
		fmt.Fprintln(out, "no overdue loans")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tBOOK\tTITLE\tDUE\tSTATUS")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", v.UserID, v.BookID, v.Title, v.DueAt.Format("2006-01-02"), v.Status)
	}
	return w.Flush()
}
