package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/bulk"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, string(b))

	return err
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}

	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(stdout, "no results")
		return
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
}

// output prints v as JSON with --json, otherwise calls table.
func output(v any, table func()) error {
	if jsonOutput {
		return printJSON(v)
	}

	table()

	return nil
}

func printUsers(users []radius.User) error {
	return output(users, func() {
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.Username, u.Group, string(u.Status), u.LastLogin})
		}

		printTable([]string{"USERNAME", "GROUP", "STATUS", "LAST_LOGIN"}, rows)
	})
}

func printGroups(groups []radius.Group) error {
	return output(groups, func() {
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{g.Name, strconv.Itoa(g.UserCount), strconv.Itoa(g.DefaultPriority)})
		}

		printTable([]string{"NAME", "USERS", "PRIORITY"}, rows)
	})
}

func printAttributes(check, reply []radius.Attribute) error {
	v := map[string][]radius.Attribute{"check": check, "reply": reply}

	return output(v, func() {
		rows := make([][]string, 0, len(check)+len(reply))
		for _, a := range check {
			rows = append(rows, []string{string(radius.KindCheck), a.Name, string(a.Operator), a.Value})
		}

		for _, a := range reply {
			rows = append(rows, []string{string(radius.KindReply), a.Name, string(a.Operator), a.Value})
		}

		printTable([]string{"KIND", "ATTRIBUTE", "OP", "VALUE"}, rows)
	})
}

func printErrors(errs []string) {
	for _, e := range errs {
		_, _ = fmt.Fprintln(os.Stderr, "error:", e)
	}
}

func printResult(res bulk.Result) error {
	if jsonOutput {
		return printJSON(res)
	}

	printErrors(res.Errors)
	printKV([][2]string{{"added", strconv.Itoa(res.Added)}, {"failed", strconv.Itoa(len(res.Errors))}})

	if len(res.Created) > 0 {
		rows := make([][]string, 0, len(res.Created))
		for _, it := range res.Created {
			rows = append(rows, []string{it.User.Username, it.User.Password, it.User.Group})
		}

		printTable([]string{"USERNAME", "PASSWORD", "GROUP"}, rows)
	}

	return nil
}

func printSummary(sum bulk.Summary) error {
	if jsonOutput {
		return printJSON(sum)
	}

	printErrors(sum.Errors)
	printKV([][2]string{{"done", strconv.Itoa(sum.Done)}, {"failed", strconv.Itoa(len(sum.Errors))}})

	if len(sum.Errors) > 0 {
		return fmt.Errorf("%d of %d failed", len(sum.Errors), sum.Done+len(sum.Errors))
	}

	return nil
}
