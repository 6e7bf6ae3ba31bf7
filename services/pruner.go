package services

import "airbnb-pricer/dataset"

// PruneColumns removes DeniedColumns from t. Every denied column must be present;
// the first absent one is reported as a SchemaError. Rows and the order of the
// remaining columns are unchanged.
func PruneColumns(t *dataset.Table) (*dataset.Table, error) {
	for _, name := range DeniedColumns {
		if !t.Has(name) {
			return nil, &SchemaError{Stage: "prune", Column: name}
		}
	}
	return t.Drop(DeniedColumns...)
}
