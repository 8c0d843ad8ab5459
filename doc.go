// Package linker annotates tabular data with knowledge-graph entities.
//
// Given a table of raw cell values, an Annotator asks a candidate generator
// for entity candidates per distinct search key and links each cell to the
// generator's best guess. Finished tables are persisted to a write-once
// store, so re-running a dataset never recomputes or rewrites an annotated
// table.
//
// # Basic Usage
//
// Create an annotator from a generator and a store:
//
//	// Candidate generator backed by an Elasticsearch entity index
//	gen, err := generator.NewLookupGenerator(generator.LookupConfig{
//		Host:  "http://localhost:9200",
//		Index: "dbpedia",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Write-once annotation store on disk
//	st, err := store.NewFSStore("/var/lib/linker")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	annotator, err := linker.NewAnnotator(gen, st, 4, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	annotated, err := annotator.AnnotateTable(ctx, table)
//
// # Datasets
//
// AnnotateDataset fans a whole benchmark out over a bounded worker pool:
//
//	dataset, err := dataset.NewCSVDataset("Round1", "/data/round1")
//	if err != nil {
//		log.Fatal(err)
//	}
//	tables, errs := annotator.AnnotateDataset(ctx, dataset)
//
// Failures are per table: a table that cannot be loaded or annotated
// contributes an error without stopping the rest of the run.
package linker
