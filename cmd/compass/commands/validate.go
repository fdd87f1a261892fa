package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dirkste/compass-automation/internal/printer"
	"github.com/dirkste/compass-automation/internal/validate"
)

type ValidateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	queueFile  string
	logFile    string
	requireAll bool
	jsonOut    bool
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateCommand {
	c := &ValidateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate", "Reconcile the queue against the journal of the last run.")
	c.Cmd.Flag("queue", "Queue file path (overrides config).").StringVar(&c.queueFile)
	c.Cmd.Flag("log-file", "Journal file path (overrides config).").StringVar(&c.logFile)
	c.Cmd.Flag("require-all", "Fail when any expected identifier is missing.").BoolVar(&c.requireAll)
	c.Cmd.Flag("json", "Print the report as JSON.").BoolVar(&c.jsonOut)

	return c
}

func (c ValidateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := loadConfig(ctx, c.rootCmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	queueFile := cfg.QueueFile
	if c.queueFile != "" {
		queueFile = c.queueFile
	}

	logFile := cfg.LogFile
	if c.logFile != "" {
		logFile = c.logFile
	}

	ids, err := loadQueue(ctx, queueFile)
	if err != nil {
		return fmt.Errorf("could not load queue: %w", err)
	}

	logStream, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("could not open journal file: %w", err)
	}
	defer logStream.Close()

	svc, err := validate.NewService(validate.ServiceConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create validation service: %w", err)
	}

	report, validationErr := svc.Validate(ids, logStream, c.requireAll)

	var p printer.Printer = printer.NewTablePrinter(c.rootCmd.Stdout)
	if c.jsonOut {
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	}
	if err := p.PrintValidationReport(report); err != nil {
		return fmt.Errorf("could not print report: %w", err)
	}

	// The validation failure propagates on purpose: strict mode must exit
	// non-zero when completion was not proven.
	return validationErr
}
