package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/challenai/hbrecord"
	"github.com/challenai/hbrecord/config"
	"github.com/challenai/hbrecord/utils"
)

var (
	configPath string
	families   []string

	scanStart     string
	scanAfter     string
	scanLimit     int
	scanCreatedAt int64
)

func main() {
	root := &cobra.Command{
		Use:          "hbfind",
		Short:        "Read records from HBase through the thrift gateway",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "yaml config file, defaults and HBRECORD_* environment otherwise")
	root.PersistentFlags().StringSliceVar(&families, "family", []string{"info"}, "column families to read, all autoloaded")

	root.AddCommand(&cobra.Command{
		Use:   "find <table> <id>...",
		Short: "Find records by id, failing unless every id exists",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runFind,
	})

	scan := &cobra.Command{
		Use:   "scan <table>",
		Short: "Scan records in key order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scan.Flags().StringVar(&scanStart, "start", "", "first row key")
	scan.Flags().StringVar(&scanAfter, "after", "", "resume after this row key, overrides --start")
	scan.Flags().IntVar(&scanLimit, "limit", 100, "maximum number of records, 0 for all")
	scan.Flags().Int64Var(&scanCreatedAt, "created-at", 0, "only read cells written before this timestamp (ms)")
	root.AddCommand(scan)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func open(table string) (*hbrecord.DB, *hbrecord.Finder[*hbrecord.Record], error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, nil, err
	}
	db, err := hbrecord.NewHBase(cfg)
	if err != nil {
		return nil, nil, err
	}

	cfs := make([]*hbrecord.ColumnFamily, 0, len(families))
	for _, name := range utils.Families(families) {
		cfs = append(cfs, hbrecord.NewAutoloadFamily(name))
	}
	schema := hbrecord.NewSchema(table, cfs, hbrecord.WithSchemaLogger(db.Logger()))
	finder, err := hbrecord.Bind(db, hbrecord.RecordModel(table, table, schema))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, finder, nil
}

func runFind(cmd *cobra.Command, args []string) (err error) {
	db, finder, err := open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ids := make([]interface{}, 0, len(args)-1)
	for _, id := range args[1:] {
		ids = append(ids, id)
	}
	res, err := finder.Find(context.Background(), ids...)
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), res.Records)
}

func runScan(cmd *cobra.Command, args []string) (err error) {
	db, finder, err := open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	opts := hbrecord.FindOptions{StartKey: scanStart, Limit: scanLimit}
	if scanAfter != "" {
		opts.StartKey = string(utils.ClosestRowAfter([]byte(scanAfter)))
	}
	if scanCreatedAt > 0 {
		opts.CreatedAt = &scanCreatedAt
	}
	records, err := finder.All(context.Background(), opts)
	if err != nil {
		return err
	}
	if err := printRecords(cmd.OutOrStdout(), records); err != nil {
		return err
	}
	if len(records) > 0 && scanLimit > 0 && len(records) == scanLimit {
		fmt.Fprintf(cmd.ErrOrStderr(), "more rows may follow, resume with --after %s\n", strconv.Quote(records[len(records)-1].ID()))
	}
	return nil
}

func printRecords(w io.Writer, records []*hbrecord.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec.Attributes()); err != nil {
			return err
		}
	}
	return nil
}
