package services

import (
	"airbnb-pricer/dataset"
	"airbnb-pricer/models"
	"airbnb-pricer/utils"
)

// Cleaner fills missing values with their sentinels and drops listings that
// carry no host registration date.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	if logger == nil {
		logger = utils.Nop()
	}
	return &Cleaner{logger: logger}
}

// HandleMissing returns a copy of t with MissingDefaults applied and every row
// with a null host_since removed, re-indexed from 0. It also returns the number
// of dropped rows. Nulls in other columns are left for later stages to reject.
func (c *Cleaner) HandleMissing(t *dataset.Table) (*dataset.Table, int, error) {
	if !t.Has(models.ColHostSince) {
		return nil, 0, &SchemaError{Stage: "normalize", Column: models.ColHostSince}
	}

	out := t
	for _, d := range MissingDefaults {
		col, err := requireColumn(out, "normalize", d.Column)
		if err != nil {
			return nil, 0, err
		}
		filled := 0
		for i, cell := range col.Cells {
			if cell.IsNull() {
				col.Cells[i] = dataset.Text(d.Value)
				filled++
			}
		}
		if filled == 0 {
			continue
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, 0, err
		}
		c.logger.Debug().Str("column", d.Column).Int("filled", filled).Msg("[cleaner] Filled missing values")
	}

	hostSince, _ := out.Column(models.ColHostSince)
	out = out.Filter(func(r int) bool { return !hostSince.Cells[r].IsNull() })

	dropped := t.Len() - out.Len()
	c.logger.Info().
		Int("rows_in", t.Len()).
		Int("rows_out", out.Len()).
		Int("dropped", dropped).
		Msg("[cleaner] Dropped listings without host_since")
	return out, dropped, nil
}

// HandleMissing is the logger-free form of (*Cleaner).HandleMissing.
func HandleMissing(t *dataset.Table) (*dataset.Table, error) {
	out, _, err := NewCleaner(nil).HandleMissing(t)
	return out, err
}
