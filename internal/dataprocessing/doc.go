// Package dataprocessing turns the raw season inputs into analysis-ready
// tables.
//
// # Pipeline
//
// The package is organized into four stages, each usable on its own:
//
//  1. Loader: reads the bang log, season batting, game results and the
//     per-player game logs. Header spellings are matched through alias
//     tables, so exports from different sites load without edits.
//  2. Cleaner: normalizes dates (with or without a year, weekday prefixes,
//     doubleheader suffixes) and player names (accents, "Last, First",
//     suffixes, punctuation).
//  3. Joiner: attributes bang events to player-games by date and name and
//     attaches game results. Anything it cannot match is counted in a
//     JoinReport instead of failing the run.
//  4. Aggregator: builds the monthly, per-game, per-player, event
//     breakdown and split tables.
//
// # Usage
//
//	ds, err := dataprocessing.NewLoader(logger).LoadAll(ctx, paths)
//	if err != nil {
//	    return err
//	}
//	joined, report := dataprocessing.NewJoiner(logger, 2017, nil).Join(ctx, ds)
//	summaries := dataprocessing.NewAggregator(logger).Aggregate(ctx, joined)
//	for _, t := range summaries.Tables() {
//	    fmt.Println(t.Title, len(t.Rows))
//	}
//
// Rates are always computed from summed counting stats. A rate with a zero
// denominator is missing (domain.Rate NaN) and renders as an empty cell.
package dataprocessing
