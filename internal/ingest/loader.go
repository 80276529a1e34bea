package ingest

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytcatalog-backend/internal/apperrors"
)

// LoadEntity inserts rows one at a time in file order and returns how many
// were stored. The first row that fails to convert or insert stops the load;
// rows already inserted stay.
func LoadEntity(ctx context.Context, db *gorm.DB, rows []Row, m Mapping) (int, error) {
	inserted := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		model, err := m.Build(m.Translate(row))
		if err != nil {
			return inserted, errors.Wrapf(err, "%s line %d", m.File, row.Line)
		}

		if err := db.WithContext(ctx).Create(model).Error; err != nil {
			return inserted, errors.Wrapf(apperrors.NewStorage("insert "+m.Entity, err), "%s line %d", m.File, row.Line)
		}
		inserted++
	}
	return inserted, nil
}
