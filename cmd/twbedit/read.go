package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/javajack/twbedit"
)

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <workbook>",
		Short: "Print a tree of worksheets, dashboards, datasources and parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := a.open(args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.out, wb.Describe())
			return err
		},
	}
}

// listKinds are the component families the list command prints.
var listKinds = []string{"worksheets", "dashboards", "datasources", "parameters", "zones", "device-layouts", "assets", "extracts"}

func (a *app) listCmd() *cobra.Command {
	var dashboard string
	cmd := &cobra.Command{
		Use:   "list <workbook> <" + strings.Join(listKinds, "|") + ">",
		Short: "List one family of components, one per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := a.open(args[0])
			if err != nil {
				return err
			}
			var names []string
			switch args[1] {
			case "worksheets":
				names = wb.Worksheets()
			case "dashboards":
				names = wb.Dashboards()
			case "datasources":
				names = wb.Datasources()
			case "parameters":
				names = wb.Parameters()
			case "zones", "device-layouts":
				if dashboard == "" {
					return fmt.Errorf("list %s requires --dashboard", args[1])
				}
				if args[1] == "zones" {
					names, err = wb.ListZones(dashboard)
				} else {
					names, err = wb.DeviceLayouts(dashboard)
				}
				if err != nil {
					return err
				}
			case "assets":
				names = wb.Assets()
			case "extracts":
				for _, e := range wb.Extracts() {
					names = append(names, fmt.Sprintf("%s\t%s\t%d\t%s", e.Name, e.Kind, e.Size, e.Checksum))
				}
			default:
				return fmt.Errorf("unknown kind %q (want one of %s)", args[1], strings.Join(listKinds, ", "))
			}
			for _, n := range names {
				fmt.Fprintln(a.out, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dashboard, "dashboard", "", "dashboard for zones and device-layouts")
	return cmd
}

func (a *app) fieldsCmd() *cobra.Command {
	var (
		where  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "fields <workbook> <datasource>",
		Short: "List the fields of a datasource",
		Long: `List the fields of a datasource.

--where filters with a boolean expression over name, caption, datatype,
role, formula, calculated and references, e.g. --where 'calculated && datatype == "real"'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := a.open(args[0])
			if err != nil {
				return err
			}
			var fields []twbedit.FieldInfo
			if where != "" {
				fields, err = wb.SelectFields(args[1], where)
			} else {
				fields, err = wb.ListFields(args[1])
			}
			if err != nil {
				return err
			}
			if asJSON {
				if fields == nil {
					fields = []twbedit.FieldInfo{}
				}
				data, err := json.MarshalIndent(fields, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, string(data))
				return err
			}
			for _, f := range fields {
				fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", f.Caption, f.DataType, f.Role, f.Formula)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "filter expression")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// writeTo sends export output to path, or to stdout when path is "" or "-".
func (a *app) writeTo(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(a.out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) exportJSONCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-json <workbook>",
		Short: "Write a JSON summary of the workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := a.open(args[0])
			if err != nil {
				return err
			}
			return a.writeTo(output, wb.ExportJSON)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (a *app) exportXLSXCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-xlsx <workbook>",
		Short: "Write a spreadsheet inventory of the workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := a.open(args[0])
			if err != nil {
				return err
			}
			return a.writeTo(output, wb.ExportXLSX)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .xlsx file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workbook>",
		Short: "Report dashboard zones that name missing worksheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := a.open(args[0])
			if err != nil {
				return err
			}
			report := wb.Validate()
			if report.OK() {
				fmt.Fprintln(a.out, "OK")
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Fprintln(a.out, issue.String())
			}
			return fmt.Errorf("%d validation issue(s)", len(report.Issues))
		},
	}
}

func (a *app) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Show a line diff between two workbooks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var docs [2][]byte
			for i, path := range args {
				wb, err := a.open(path)
				if err != nil {
					return err
				}
				if docs[i], err = wb.Serialize(); err != nil {
					return err
				}
			}
			for _, line := range twbedit.CompareLines(docs[0], docs[1]) {
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
}
