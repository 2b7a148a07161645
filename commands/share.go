package commands

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/driveshare/driveshare/gdrive"
	"github.com/driveshare/driveshare/pipeline"
)

var ShareCmd = Share{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		url:         "",
		debug:       false,
	},

	area:     "",
	parent:   "",
	dryrun:   false,
	throttle: gdrive.DefaultThrottle,
	max:      0,
	shard:    0,
	shards:   1,
	poll:     0,
}

// Share is the CLI command that runs the participant processing engine: one
// pass (or a polled series of passes) over the roster worksheet, granting
// read access to each participant's Drive folder and writing the outcome
// back to the worksheet.
type Share struct {
	command

	area     string
	parent   string
	dryrun   bool
	throttle time.Duration
	max      int
	shard    int
	shards   int
	poll     time.Duration
}

func (cmd *Share) Name() string {
	return "share"
}

func (cmd *Share) Description() string {
	return "Grants folder read access to the participants listed in a Google Sheets worksheet"
}

func (cmd *Share) Usage() string {
	return "--credentials <file> --url <url> --range <range>"
}

func (cmd *Share) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] share [options] --credentials <credentials> --url <URL> --range <range>\n", APP)
	fmt.Println()
	fmt.Println("  Reads the participant roster from a Google Sheets worksheet, locates each participant's")
	fmt.Println("  Drive folder and grants the participant read access, recording the outcome back into the")
	fmt.Println("  worksheet ('FolderId', 'isShared', 'isFolderExists' and 'LastLog' columns)")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Flag defaults can be preset with DRIVESHARE_* environment variables, e.g. DRIVESHARE_URL,")
	fmt.Println("  DRIVESHARE_RANGE, DRIVESHARE_THROTTLE")
	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    driveshare share --credentials "credentials.json" \`)
	fmt.Println(`                     --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                     --range "Roster!A1:F" \`)
	fmt.Println(`                     --parent "1xyzABCfolderid"`)
	fmt.Println()
	fmt.Println(`    driveshare share --credentials "credentials.json" \`)
	fmt.Println(`                     --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                     --range "Roster!A1:F" \`)
	fmt.Println(`                     --shard 1 --shards 3 --poll 15m`)
	fmt.Println()
}

func (cmd *Share) FlagSet() *flag.FlagSet {
	cmd.environment()

	flagset := cmd.flagset("share")

	flagset.StringVar(&cmd.area, "range", cmd.area, "Spreadsheet range for the roster e.g. 'Roster!A1:F' (the range must start at the header row)")
	flagset.StringVar(&cmd.parent, "parent", cmd.parent, "Drive folder ID to search under. Searches globally by name if not set")
	flagset.BoolVar(&cmd.dryrun, "dry-run", cmd.dryrun, "Simulates the grants without making any changes to Drive")
	flagset.DurationVar(&cmd.throttle, "throttle", cmd.throttle, "Minimum interval between API calls")
	flagset.IntVar(&cmd.max, "max", cmd.max, "Maximum number of records processed in one pass (0 for no limit)")
	flagset.IntVar(&cmd.shard, "shard", cmd.shard, "Shard index of this worker")
	flagset.IntVar(&cmd.shards, "shards", cmd.shards, "Total number of worker shards")
	flagset.DurationVar(&cmd.poll, "poll", cmd.poll, "Re-runs the pass on this interval (0 to run once)")

	return flagset
}

// environment overlays DRIVESHARE_* values onto the built-in defaults, so
// cron deployments can run with a bare 'driveshare share'. Command line
// flags still take precedence.
func (cmd *Share) environment() {
	var e struct {
		Credentials string        `env:"DRIVESHARE_CREDENTIALS"`
		URL         string        `env:"DRIVESHARE_URL"`
		Range       string        `env:"DRIVESHARE_RANGE"`
		Parent      string        `env:"DRIVESHARE_PARENT"`
		Throttle    time.Duration `env:"DRIVESHARE_THROTTLE"`
		Max         int           `env:"DRIVESHARE_MAX"`
		Shard       int           `env:"DRIVESHARE_SHARD"`
		Shards      int           `env:"DRIVESHARE_SHARDS"`
	}

	if err := env.Parse(&e); err != nil {
		logrus.Warnf("invalid DRIVESHARE_* environment (%v)", err)
		return
	}

	if e.Credentials != "" {
		cmd.credentials = e.Credentials
	}

	if e.URL != "" {
		cmd.url = e.URL
	}

	if e.Range != "" {
		cmd.area = e.Range
	}

	if e.Parent != "" {
		cmd.parent = e.Parent
	}

	if e.Throttle > 0 {
		cmd.throttle = e.Throttle
	}

	if e.Max > 0 {
		cmd.max = e.Max
	}

	if e.Shards > 0 {
		cmd.shard = e.Shard
		cmd.shards = e.Shards
	}
}

func (cmd *Share) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	if strings.TrimSpace(cmd.url) == "" {
		return fmt.Errorf("--url is a required option")
	}

	if strings.TrimSpace(cmd.area) == "" {
		return fmt.Errorf("--range is a required option")
	}

	if cmd.shards < 1 {
		return fmt.Errorf("--shards must be at least 1")
	}

	if cmd.shard < 0 || cmd.shard >= cmd.shards {
		return fmt.Errorf("--shard must be in the range 0..%v", cmd.shards-1)
	}

	spreadsheet, err := spreadsheetID(cmd.url)
	if err != nil {
		return err
	}

	if cmd.debug {
		logrus.Debugf("spreadsheet - ID:%s  range:%s  shard:%v/%v", spreadsheet, cmd.area, cmd.shard, cmd.shards)
	}

	if cmd.parent == "" {
		logrus.Warn("no --parent folder configured - folder search is unscoped and may match folders outside the intended hierarchy")
	}

	// ... authorise
	tokens := cmd.tokens
	if tokens == "" {
		tokens = filepath.Join(cmd.workdir, ".google")
	}

	httpClient, err := authorize(cmd.credentials, tokens, SHEETS, DRIVE)
	if err != nil {
		return fmt.Errorf("authentication/authorization error (%v)", err)
	}

	client, err := gdrive.NewClient(httpClient, cmd.throttle)
	if err != nil {
		return err
	}

	// ... wire up the engine
	retry := gdrive.NewRetrier()

	store, err := gdrive.NewSheetStore(client, retry, spreadsheet, cmd.area)
	if err != nil {
		return err
	}

	config := pipeline.Config{
		ParentFolderID: cmd.parent,
		Role:           gdrive.RoleReader,
		Throttle:       cmd.throttle,
		MaxPerRun:      cmd.max,
		ShardIndex:     cmd.shard,
		ShardTotal:     cmd.shards,
	}

	engine := pipeline.New(
		config,
		store,
		gdrive.NewResolver(client, retry),
		gdrive.NewGrantor(client, retry, cmd.dryrun),
		pipeline.NewLogEvents(nil))

	// ... run
	if cmd.poll <= 0 {
		if _, err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}

		return nil
	}

	// Cancellation is observed at pass boundaries only - a record in flight
	// always completes its write-back first.
	for {
		if _, err := engine.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			logrus.Errorf("pass failed (%v)", err)
		}

		select {
		case <-ctx.Done():
			return nil

		case <-time.After(cmd.poll):
		}
	}
}
