package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/printer"
	"github.com/dirkste/compass-automation/internal/ui/fake"
	"github.com/dirkste/compass-automation/internal/workflow"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	queueFile string
	logFile   string
	mileage   string
	opCode    string
	note      string
	jsonOut   bool
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Process the work item queue.")
	c.Cmd.Flag("queue", "Queue file path (overrides config).").StringVar(&c.queueFile)
	c.Cmd.Flag("log-file", "Journal file path (overrides config).").StringVar(&c.logFile)
	c.Cmd.Flag("mileage", "Mileage value typed over the prefilled one.").StringVar(&c.mileage)
	c.Cmd.Flag("opcode", "Operation code tile to select.").StringVar(&c.opCode)
	c.Cmd.Flag("note", "Completion note for open items.").StringVar(&c.note)
	c.Cmd.Flag("json", "Print the run summary as JSON.").BoolVar(&c.jsonOut)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
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

	// Queue is validated before anything touches the UI.
	ids, err := loadQueue(ctx, queueFile)
	if err != nil {
		return fmt.Errorf("could not load queue: %w", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("queue %q has no identifiers", queueFile)
	}
	logger.Infof("Loaded %d identifier(s) from %s", len(ids), queueFile)

	// The journal file is append-only: previous sessions stay in place and
	// validation isolates the current one through its session marker.
	out, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open journal file: %w", err)
	}
	defer out.Close()

	jrnl, err := journal.New(journal.Config{
		Out:            out,
		MinCriticality: journal.ParseCriticality(cfg.MinCriticality),
		MaxVerbosity:   journal.ParseVerbosity(cfg.MaxVerbosity),
	})
	if err != nil {
		return fmt.Errorf("could not create journal: %w", err)
	}

	// Only the simulated session driver exists for now, so every run is a
	// dry run. Say so up front instead of letting operators find out from
	// the journal.
	logger.Warningf("UI session is simulated, no live browser interactions will be performed")
	session, err := fake.NewSession(fake.SessionConfig{
		Logger:     logger,
		Permissive: true,
	})
	if err != nil {
		return fmt.Errorf("could not create session: %w", err)
	}

	opCode := c.opCode
	if opCode == "" {
		opCode = workflow.DefaultOperationCode
	}

	// The simulated grid needs a tile matching the configured operation code
	// or the create-new chain could never select one.
	pages := workflow.DefaultPages()
	for _, q := range pages.OperationCode.Queries {
		session.StubQuery(q.Expr, fake.NewElement(fake.ElementConfig{Key: "opcode-tile", Text: opCode}))
	}

	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Session:        session,
		Triage:         noTriageRecords,
		Journal:        jrnl,
		Logger:         logger,
		Pages:          pages,
		Timeout:        cfg.InteractionTimeout,
		Interval:       cfg.PollInterval,
		MileageValue:   c.mileage,
		OperationCode:  opCode,
		CompletionNote: c.note,
	})
	if err != nil {
		return fmt.Errorf("could not create engine: %w", err)
	}

	summary, err := engine.Run(ctx, ids)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	var p printer.Printer = printer.NewTablePrinter(c.rootCmd.Stdout)
	if c.jsonOut {
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	}
	if err := p.PrintRunSummary(summary); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	return nil
}

// noTriageRecords is the triage source for sessions without a live detail
// pane: every item routes to the create-new chain.
var noTriageRecords = workflow.TriageSourceFunc(func(ctx context.Context, id string) ([]model.TriageMarker, error) {
	return nil, nil
})
