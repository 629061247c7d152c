package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/skybasehq/skybase-go"
	"github.com/spf13/cobra"
)

var (
	flagQueryLimit int
	flagQueryLast  string
	flagQuerySort  bool
	flagQueryAll   bool
)

var getCmd = &cobra.Command{
	Use:   "get <base> <key>",
	Short: "Fetch one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		item, err := client.Base(args[0]).Get(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var putCmd = &cobra.Command{
	Use:   "put <base> <json>...",
	Short: "Upsert records (max 25)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		records := make([]skybase.Record, 0, len(args)-1)
		for _, raw := range args[1:] {
			var value map[string]any
			if err := json.Unmarshal([]byte(raw), &value); err != nil {
				return fmt.Errorf("parse record %q: %w", raw, err)
			}
			records = append(records, skybase.Record{Value: value})
		}

		out, err := client.Base(args[0]).Put(cmd.Context(), records...)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <base> <json>",
	Short: "Insert one record, failing if its key exists",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		var value map[string]any
		if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
			return fmt.Errorf("parse record: %w", err)
		}

		out, err := client.Base(args[0]).Insert(cmd.Context(), skybase.Record{Value: value})
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <base> <key>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.Base(args[0]).Delete(cmd.Context(), args[1])
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <base> [field[?op]=value]...",
	Short: "Query records with filter predicates",
	Long: `Query records. Each positional filter is "field=value" for equality or
"field?op=value" with op one of ne, gt, gte, lt, lte, range, contains,
not_contains, pfx. Values parse as JSON, falling back to plain strings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		q := client.Base(args[0]).Query()
		for _, filter := range args[1:] {
			if err := applyFilter(q, filter); err != nil {
				return err
			}
		}
		if flagQueryLimit > 0 {
			q.Limit(flagQueryLimit)
		}
		if flagQueryLast != "" {
			q.Last(flagQueryLast)
		}
		q.Sort(flagQuerySort)

		var out *skybase.QueryResponse
		if flagQueryAll {
			out, err = q.All(cmd.Context())
		} else {
			out, err = q.Run(cmd.Context())
		}
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

func applyFilter(q *skybase.Query, filter string) error {
	expr, rawValue, ok := strings.Cut(filter, "=")
	if !ok {
		return fmt.Errorf("bad filter %q: want field[?op]=value", filter)
	}

	field, op, _ := strings.Cut(expr, "?")

	var value any
	if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
		value = rawValue
	}

	q.Set(skybase.Op(op), field, value)
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	queryCmd.Flags().IntVar(&flagQueryLimit, "limit", 0, "max records per page (server caps at 1000)")
	queryCmd.Flags().StringVar(&flagQueryLast, "last", "", "resume from this pagination cursor")
	queryCmd.Flags().BoolVar(&flagQuerySort, "sort", false, "sort results descending")
	queryCmd.Flags().BoolVar(&flagQueryAll, "all", false, "walk all pages (limit must be unset)")

	rootCmd.AddCommand(getCmd, putCmd, insertCmd, deleteCmd, queryCmd)
}
