package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/leapstack-labs/metroflow/internal/dataset"
)

// Predicates returns the equality filters for sel in application order
// (line, year, quarter). Sentinel fields contribute no predicate.
func Predicates(sel Selection) ([]dataframe.F, error) {
	sel = sel.Normalize()
	year, hasYear, err := sel.YearValue()
	if err != nil {
		return nil, err
	}

	var preds []dataframe.F
	if sel.Line != AllLines {
		preds = append(preds, dataframe.F{Colname: dataset.ColLine, Comparator: series.Eq, Comparando: sel.Line})
	}
	if hasYear {
		preds = append(preds, dataframe.F{Colname: dataset.ColYear, Comparator: series.Eq, Comparando: year})
	}
	if sel.Quarter != AllQuarters {
		preds = append(preds, dataframe.F{Colname: dataset.ColQuarter, Comparator: series.Eq, Comparando: sel.Quarter})
	}
	return preds, nil
}

// Filter applies the selection to df, one predicate after another. The
// result is a new frame; df is left untouched.
func Filter(df dataframe.DataFrame, sel Selection) (dataframe.DataFrame, error) {
	preds, err := Predicates(sel)
	if err != nil {
		return df, err
	}
	for _, p := range preds {
		if df.Nrow() == 0 {
			break
		}
		df = df.Filter(p)
		if df.Err != nil {
			return df, fmt.Errorf("filter %s: %w", p.Colname, df.Err)
		}
	}
	return df, nil
}
