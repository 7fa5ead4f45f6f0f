// Package dataset turns a CSV artifact into a numeric feature matrix and its labels.
//
// The first row is the header. Label columns are kept as raw strings; every
// other column must be numeric.
//
//	features, labels, err := dataset.Load(raw, []string{"target"})
//	if err != nil {
//	    // *errors.ConfigurationError or *errors.DatasetError
//	}
//	rows, cols := features.Data.Dims()
package dataset
