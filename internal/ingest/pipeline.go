package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ytcatalog-backend/internal/schema"
)

// Report summarises one ingestion run.
type Report struct {
	RunID    string
	Counts   map[string]int
	Warnings int
	Started  time.Time
	Duration time.Duration
}

func (r *Report) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

type Pipeline struct {
	db     *gorm.DB
	src    Source
	reg    *schema.Registry
	stages []Mapping
	log    *zap.Logger
}

// New builds a pipeline over stages, or over DefaultStages when none are
// given. It fails if the stage order would insert a child before its parent.
func New(db *gorm.DB, src Source, reg *schema.Registry, log *zap.Logger, stages ...Mapping) (*Pipeline, error) {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	if log == nil {
		log = zap.NewNop()
	}

	order := make([]string, 0, len(stages))
	for _, s := range stages {
		order = append(order, s.Entity)
	}
	if err := reg.CheckOrder(order); err != nil {
		return nil, errors.Wrap(err, "invalid stage order")
	}

	return &Pipeline{db: db, src: src, reg: reg, stages: stages, log: log.Named("ingest")}, nil
}

// Run reads every file before inserting anything, then loads the stages in
// order. A failing stage stops the run; nothing is rolled back.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Counts:  make(map[string]int, len(p.stages)),
		Started: time.Now(),
	}
	log := p.log.With(zap.String("run_id", report.RunID))
	defer func() { report.Duration = time.Since(report.Started) }()

	parsed := make([][]Row, len(p.stages))
	for i, stage := range p.stages {
		rows, warnings, err := ParseFile(ctx, p.src, stage.File)
		if err != nil {
			log.Error("could not read file", zap.String("file", stage.File), zap.Error(err))
			return report, err
		}
		for _, w := range warnings {
			log.Warn("skipped malformed row",
				zap.String("file", w.File),
				zap.Int("line", w.Line),
				zap.String("reason", w.Message),
			)
		}
		report.Warnings += len(warnings)
		parsed[i] = rows
	}

	for i, stage := range p.stages {
		log.Info("loading", zap.String("entity", stage.Entity), zap.Int("rows", len(parsed[i])))

		n, err := LoadEntity(ctx, p.db, parsed[i], stage)
		report.Counts[stage.Entity] = n
		if err != nil {
			log.Error("stage failed",
				zap.String("entity", stage.Entity),
				zap.Int("inserted", n),
				zap.Error(err),
			)
			return report, errors.Wrapf(err, "load %s", stage.Entity)
		}

		log.Info("loaded", zap.String("entity", stage.Entity), zap.Int("inserted", n))
	}

	if err := p.syncSequences(ctx); err != nil {
		return report, err
	}

	log.Info("ingestion finished",
		zap.Int("total", report.Total()),
		zap.Int("warnings", report.Warnings),
		zap.Duration("elapsed", time.Since(report.Started)),
	)
	return report, nil
}

// syncSequences moves PostgreSQL id sequences past the ids loaded from the
// files, so rows created later through the API do not collide with them.
func (p *Pipeline) syncSequences(ctx context.Context) error {
	if p.db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, stage := range p.stages {
		if _, ok := stage.Columns["id"]; !ok {
			continue
		}
		entity, ok := p.reg.Entity(stage.Entity)
		if !ok {
			continue
		}

		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			entity.Table,
		)
		if err := p.db.WithContext(ctx).Exec(query).Error; err != nil {
			return errors.Wrapf(err, "sync sequence for %s", entity.Table)
		}
	}
	return nil
}
