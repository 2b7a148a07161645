package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/driveshare/driveshare/gdrive"
	"github.com/driveshare/driveshare/roster"
)

// Resolver maps a participant name to a storage folder.
type Resolver interface {
	Resolve(ctx context.Context, name, parentID string) (id string, ok bool, err error)
}

// Grantor checks and issues access grants.
type Grantor interface {
	HasGrant(ctx context.Context, fileID, email, role string) bool
	Grant(ctx context.Context, fileID, email, role string) (tag string, err error)
}

// Store reads the roster and persists per-row status transitions.
type Store interface {
	Load(ctx context.Context) ([]roster.Record, error)
	WriteStatus(ctx context.Context, row int, status roster.Status) error
}

// Config is the immutable per-run configuration of one worker.
type Config struct {
	ParentFolderID string
	Role           string
	Throttle       time.Duration
	MaxPerRun      int
	ShardIndex     int
	ShardTotal     int
}

// Stats are the aggregate counters for one pass. Done counts new and
// re-confirmed grants; folder-not-found outcomes count as errors since the
// grant remains unfulfilled.
type Stats struct {
	Total   int
	Done    int
	Skipped int
	Errors  int
}

// Pipeline drives each participant record through resolution, permission
// check, grant and status write-back, strictly sequentially. Records are
// processed in roster order restricted to this worker's shard; one record's
// failure never aborts the batch.
type Pipeline struct {
	config   Config
	store    Store
	resolver Resolver
	grantor  Grantor
	events   Events
	sleep    func(time.Duration)
	now      func() time.Time
}

func New(config Config, store Store, resolver Resolver, grantor Grantor, events Events) *Pipeline {
	if config.Role == "" {
		config.Role = gdrive.RoleReader
	}

	if config.ShardTotal < 1 {
		config.ShardTotal = 1
	}

	if events == nil {
		events = discard{}
	}

	return &Pipeline{
		config:   config,
		store:    store,
		resolver: resolver,
		grantor:  grantor,
		events:   events,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Run processes one full pass over the roster and returns the aggregate
// counters. Only schema-level failures (unreadable roster, missing required
// columns) escape as errors; everything per-record is converted to a
// terminal outcome plus a written audit log entry.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}

	records, err := p.store.Load(ctx)
	if err != nil {
		return stats, err
	}

	batch := p.batch(records)
	seen := map[string]bool{}

	for i, record := range batch {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		outcome, detail := p.process(ctx, record, seen)

		stats.Total++
		switch outcome {
		case Granted, AlreadyGranted:
			stats.Done++
		case Skipped:
			stats.Skipped++
		default:
			stats.Errors++
		}

		p.events.Record(record.Row, outcome, detail)

		// Keep the burst rate conservative rather than relying solely on
		// reactive backoff.
		if outcome != Skipped && i < len(batch)-1 {
			p.sleep(p.config.Throttle/2 + time.Duration(rand.Int63n(int64(250*time.Millisecond))))
		}
	}

	p.events.Summary(stats)

	return stats, nil
}

// batch selects this worker's share of the roster: shard filtering followed
// by truncation to MaxPerRun. Duplicates are detected during processing so
// they surface as skip outcomes rather than silently vanishing here.
func (p *Pipeline) batch(records []roster.Record) []roster.Record {
	batch := []roster.Record{}

	for _, record := range records {
		if roster.Mine(record, p.config.ShardIndex, p.config.ShardTotal) {
			batch = append(batch, record)
		}
	}

	if p.config.MaxPerRun > 0 && len(batch) > p.config.MaxPerRun {
		batch = batch[:p.config.MaxPerRun]
	}

	return batch
}

func (p *Pipeline) process(ctx context.Context, record roster.Record, seen map[string]bool) (Outcome, string) {
	if !record.HasValidEmail() {
		detail := fmt.Sprintf("SKIP: INVALID EMAIL '%s'", record.Email)
		if err := p.writeback(ctx, record.Row, roster.Status{Shared: "false", Log: p.stamp(detail)}); err != nil {
			return p.failed(ctx, record.Row, err)
		}

		return Skipped, detail
	}

	key := record.Key()
	if seen[key] {
		return Skipped, fmt.Sprintf("SKIP: DUPLICATE '%s' <%s>", record.Name, strings.ToLower(record.Email))
	}

	seen[key] = true

	if record.IsShared() {
		return Skipped, fmt.Sprintf("SKIP: ALREADY SHARED '%s'", record.Name)
	}

	// ... resolve folder
	folderID := record.FolderID

	if folderID == "" {
		id, ok, err := p.resolver.Resolve(ctx, record.Name, p.config.ParentFolderID)

		if err != nil {
			return p.failed(ctx, record.Row, err)
		}

		if !ok {
			detail := fmt.Sprintf("FOLDER NOT FOUND '%s'", record.Name)
			if err := p.writeback(ctx, record.Row, roster.Status{FolderExists: "false", Log: p.stamp(detail)}); err != nil {
				return p.failed(ctx, record.Row, err)
			}

			return FolderNotFound, detail
		}

		folderID = id
	}

	status := roster.Status{
		FolderExists: "true",
		Log:          p.stamp(fmt.Sprintf("RESOLVED '%s' → %s", record.Name, folderID)),
	}

	if record.FolderID == "" {
		status.FolderID = folderID
	}

	if err := p.writeback(ctx, record.Row, status); err != nil {
		return p.failed(ctx, record.Row, err)
	}

	// ... check existing grant
	email := strings.ToLower(record.Email)

	if p.grantor.HasGrant(ctx, folderID, email, p.config.Role) {
		detail := fmt.Sprintf("ALREADY GRANTED %s → %s", p.config.Role, email)
		if err := p.writeback(ctx, record.Row, roster.Status{Shared: "true", Log: p.stamp(detail)}); err != nil {
			return p.failed(ctx, record.Row, err)
		}

		return AlreadyGranted, detail
	}

	// ... grant
	tag, err := p.grantor.Grant(ctx, folderID, email, p.config.Role)
	if err != nil {
		return p.failed(ctx, record.Row, err)
	}

	detail := fmt.Sprintf("%s %s → %s", tag, p.config.Role, email)
	if err := p.writeback(ctx, record.Row, roster.Status{Shared: "true", Log: p.stamp(detail)}); err != nil {
		return p.failed(ctx, record.Row, err)
	}

	return Granted, detail
}

// failed converts an unrecovered per-record error into a terminal outcome
// with a full diagnostic entry in the worksheet audit log. The sheet is the
// durable cross-run state, so a failed status write is itself an unrecovered
// error - it surfaces in the event detail even when the diagnostic write
// below fails too.
func (p *Pipeline) failed(ctx context.Context, row int, err error) (Outcome, string) {
	detail := fmt.Sprintf("ERROR: %v", err)

	if werr := p.writeback(ctx, row, roster.Status{Shared: "false", Log: p.stamp(detail)}); werr != nil && werr != err {
		detail = fmt.Sprintf("%s (status write-back failed: %v)", detail, werr)
	}

	return Errored, detail
}

func (p *Pipeline) writeback(ctx context.Context, row int, status roster.Status) error {
	return p.store.WriteStatus(ctx, row, status)
}

func (p *Pipeline) stamp(detail string) string {
	return fmt.Sprintf("%s  %s", p.now().Format("2006-01-02 15:04:05"), detail)
}
