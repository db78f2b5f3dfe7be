package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javajack/twbedit"
	"github.com/javajack/twbedit/backup"
	"github.com/javajack/twbedit/component"
)

// defaultBackupDir is used by the fs backup driver when no directory is
// configured, relative to the workbook's directory.
const defaultBackupDir = ".twbedit-backups"

// editFlags are shared by every command that writes a workbook.
type editFlags struct {
	as            string
	dryRun        bool
	backup        bool
	packageAssets bool
	targetVersion string
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.as, "as", "", "write to this path instead of the source")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the line diff and write nothing")
	cmd.Flags().BoolVar(&f.backup, "backup", false, "copy the source to the backup store first")
	cmd.Flags().BoolVar(&f.packageAssets, "package-assets", false, "write a packaged .twbx")
	cmd.Flags().StringVar(&f.targetVersion, "target-version", "", "stamp the workbook with this version")
}

// edit opens path, applies change, and writes the result according to f.
func (a *app) edit(ctx context.Context, path string, f *editFlags, change func(*twbedit.Workbook) error) error {
	wb, err := a.open(path)
	if err != nil {
		return err
	}
	if err := change(wb); err != nil {
		return err
	}

	opts := []twbedit.SaveOption{
		twbedit.WithPackageAssets(f.packageAssets || a.cfg.PackageAssets),
		twbedit.WithTargetVersion(f.targetVersion),
		twbedit.WithDryRun(f.dryRun),
	}
	if f.as != "" {
		opts = append(opts, twbedit.WithPath(f.as))
	}
	if f.dryRun {
		if _, err := wb.Save(opts...); err != nil {
			return err
		}
		lines, err := wb.DisplayDiff()
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(a.out, line)
		}
		return nil
	}

	if f.backup {
		if err := a.backupSource(ctx, wb.Source().Path); err != nil {
			return err
		}
	}
	saved, err := wb.Save(opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "saved", saved)
	return nil
}

func (a *app) backupSource(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	store, err := backup.Open(ctx, a.cfg.Backup, filepath.Join(filepath.Dir(path), defaultBackupDir))
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	loc, err := store.Put(ctx, backup.Key(path, time.Now()), data)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	a.log.Info("backup written", "driver", store.Driver(), "location", loc)
	return nil
}

func (a *app) renameFieldCmd() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "rename-field <workbook> <datasource> <old> <new>",
		Short: "Rename a field and rewrite every reference to it",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				return wb.RenameField(args[1], args[2], args[3])
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) addCalcCmd() *cobra.Command {
	var (
		f        editFlags
		dataType string
	)
	cmd := &cobra.Command{
		Use:   "add-calc <workbook> <datasource> <name> <formula>",
		Short: "Add a calculated field",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				return wb.AddCalculation(args[1], args[2], args[3], dataType)
			})
		},
	}
	cmd.Flags().StringVar(&dataType, "datatype", twbedit.DefaultCalculationType, "datatype of the result")
	f.register(cmd)
	return cmd
}

func (a *app) setParameterCmd() *cobra.Command {
	var (
		f             editFlags
		allowable     []string
		displayFormat string
	)
	cmd := &cobra.Command{
		Use:   "set-parameter <workbook> <name> <datatype> <value>",
		Short: "Create a parameter or update its datatype and value",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []twbedit.ParameterOption
			if cmd.Flags().Changed("allowable") {
				opts = append(opts, twbedit.WithAllowableValues(allowable...))
			}
			if cmd.Flags().Changed("display-format") {
				opts = append(opts, twbedit.WithDisplayFormat(displayFormat))
			}
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				wb.SetParameter(args[1], args[2], args[3], opts...)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&allowable, "allowable", nil, "replace the list of allowable values (comma separated)")
	cmd.Flags().StringVar(&displayFormat, "display-format", "", "display format")
	f.register(cmd)
	return cmd
}

func (a *app) addSheetCmd() *cobra.Command {
	var (
		f  editFlags
		at twbedit.ZonePlacement
	)
	cmd := &cobra.Command{
		Use:   "add-sheet-to-dashboard <workbook> <dashboard> <worksheet>",
		Short: "Place a worksheet zone on a dashboard",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				id, err := wb.AddSheetToDashboard(args[1], args[2], at)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "zone", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&at.Floating, "floating", false, "float the zone")
	cmd.Flags().StringVar(&at.Container, "container", "", "id of the layout container")
	cmd.Flags().IntVar(&at.Index, "index", twbedit.AppendIndex, "position among top-level zones (-1 appends)")
	f.register(cmd)
	return cmd
}

func (a *app) moveZoneCmd() *cobra.Command {
	var (
		f          editFlags
		x, y, w, h int
	)
	cmd := &cobra.Command{
		Use:   "move-zone <workbook> <dashboard> <zone-id>",
		Short: "Change a zone's position or size",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var g twbedit.ZoneGeometry
			for _, v := range []struct {
				flag string
				val  int
				dst  **int
			}{{"x", x, &g.X}, {"y", y, &g.Y}, {"w", w, &g.W}, {"h", h, &g.H}} {
				if cmd.Flags().Changed(v.flag) {
					*v.dst = twbedit.Int(v.val)
				}
			}
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				return wb.MoveZone(args[1], args[2], g)
			})
		},
	}
	cmd.Flags().IntVar(&x, "x", 0, "left edge")
	cmd.Flags().IntVar(&y, "y", 0, "top edge")
	cmd.Flags().IntVar(&w, "w", 0, "width")
	cmd.Flags().IntVar(&h, "h", 0, "height")
	f.register(cmd)
	return cmd
}

func (a *app) addFilterActionCmd() *cobra.Command {
	var (
		f        editFlags
		mappings []string
	)
	cmd := &cobra.Command{
		Use:   "add-filter-action <workbook> <source> <target>",
		Short: "Add a filter action between two sheets or dashboards",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mapping []twbedit.FieldMapping
			for _, m := range mappings {
				parsed := component.ParseMapping(m)
				if len(parsed) == 0 || parsed[0].Source == "" || parsed[0].Target == "" {
					return fmt.Errorf("invalid --map %q (want source=target)", m)
				}
				mapping = append(mapping, parsed...)
			}
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				wb.AddFilterAction(args[1], args[2], mapping...)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&mappings, "map", nil, "field mapping source=target (repeatable)")
	f.register(cmd)
	return cmd
}

func (a *app) setConnectionCmd() *cobra.Command {
	var (
		f      editFlags
		values = map[string]*string{"server": new(string), "db": new(string), "schema": new(string), "table": new(string)}
	)
	cmd := &cobra.Command{
		Use:   "set-connection <workbook> <datasource>",
		Short: "Change a datasource's connection settings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pick := func(name string) *string {
				if cmd.Flags().Changed(name) {
					return values[name]
				}
				return nil
			}
			fields := twbedit.ConnectionFields{
				Server: pick("server"),
				DB:     pick("db"),
				Schema: pick("schema"),
				Table:  pick("table"),
			}
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				return wb.SetConnection(args[1], fields)
			})
		},
	}
	for _, name := range []string{"server", "db", "schema", "table"} {
		cmd.Flags().StringVar(values[name], name, "", "connection "+name)
	}
	f.register(cmd)
	return cmd
}

func (a *app) setFormatCmd() *cobra.Command {
	var (
		f      editFlags
		format string
		alias  string
	)
	cmd := &cobra.Command{
		Use:   "set-format <workbook> <datasource> <field>",
		Short: "Set a field's number format or display alias",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			setFormat, setAlias := cmd.Flags().Changed("format"), cmd.Flags().Changed("alias")
			if !setFormat && !setAlias {
				return fmt.Errorf("set-format needs --format or --alias")
			}
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				if setFormat {
					if err := wb.SetFieldFormat(args[1], args[2], format); err != nil {
						return err
					}
				}
				if setAlias {
					return wb.SetFieldAlias(args[1], args[2], alias)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "number format, e.g. '$#,##0.00'")
	cmd.Flags().StringVar(&alias, "alias", "", "display alias")
	f.register(cmd)
	return cmd
}

func (a *app) duplicateDashboardCmd() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "duplicate-dashboard <workbook> <dashboard> <new-name>",
		Short: "Copy a dashboard under a new name with fresh zone ids",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], &f, func(wb *twbedit.Workbook) error {
				return wb.DuplicateDashboard(args[1], args[2])
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) saveCmd() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "save <workbook>",
		Short: "Re-serialize a workbook, optionally packaging or re-stamping it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], &f, func(*twbedit.Workbook) error { return nil })
		},
	}
	f.register(cmd)
	return cmd
}
