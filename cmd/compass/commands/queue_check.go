package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dirkste/compass-automation/internal/printer"
)

type QueueCheckCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	queueFile string
	jsonOut   bool
}

// NewQueueCheckCommand returns the queue check command.
func NewQueueCheckCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *QueueCheckCommand {
	c := &QueueCheckCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("check", "Load and validate the queue file without running anything.")
	c.Cmd.Flag("queue", "Queue file path (overrides config).").StringVar(&c.queueFile)
	c.Cmd.Flag("json", "Print the queue as JSON.").BoolVar(&c.jsonOut)

	return c
}

func (c QueueCheckCommand) Name() string { return c.Cmd.FullCommand() }

func (c QueueCheckCommand) Run(ctx context.Context) error {
	cfg, err := loadConfig(ctx, c.rootCmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	queueFile := cfg.QueueFile
	if c.queueFile != "" {
		queueFile = c.queueFile
	}

	ids, err := loadQueue(ctx, queueFile)
	if err != nil {
		return fmt.Errorf("could not load queue: %w", err)
	}

	var p printer.Printer = printer.NewTablePrinter(c.rootCmd.Stdout)
	if c.jsonOut {
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	}
	if err := p.PrintQueue(ids); err != nil {
		return fmt.Errorf("could not print queue: %w", err)
	}

	return nil
}
