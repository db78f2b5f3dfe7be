package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/javajack/twbedit"
	"github.com/javajack/twbedit/config"
)

// app carries the state shared by every subcommand.
type app struct {
	out, errOut io.Writer

	configPath string
	verbose    bool

	cfg config.Config
	log *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "twbedit",
		Short: "Inspect and edit Tableau workbooks (.twb, .twbx)",
		Long: `twbedit edits Tableau workbook documents and packaged workbooks without
the authoring application.

Read commands print to stdout. Edit commands write the workbook back over its
source unless --as names another file; --dry-run prints the line diff instead.

Examples:
  twbedit inspect sales.twbx
  twbedit rename-field sales.twbx Orders Profit "Net Profit" --backup
  twbedit add-sheet-to-dashboard sales.twb Executive Detail --index 0 --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvFile+" or ./"+config.DefaultFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug records to stderr")

	root.AddCommand(
		a.inspectCmd(),
		a.listCmd(),
		a.fieldsCmd(),
		a.exportJSONCmd(),
		a.exportXLSXCmd(),
		a.validateCmd(),
		a.diffCmd(),
		a.renameFieldCmd(),
		a.addCalcCmd(),
		a.setParameterCmd(),
		a.addSheetCmd(),
		a.moveZoneCmd(),
		a.addFilterActionCmd(),
		a.setConnectionCmd(),
		a.setFormatCmd(),
		a.duplicateDashboardCmd(),
		a.saveCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) open(path string) (*twbedit.Workbook, error) {
	return twbedit.Open(path, twbedit.WithLogger(a.log))
}
