package linker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semtab/linker/pkg/config"
	"github.com/semtab/linker/pkg/dataset"
	"github.com/semtab/linker/pkg/eval"
	"github.com/semtab/linker/pkg/export"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <dataset>",
	Short: "Annotate every table of a dataset",
	Long: `Annotate every table of a dataset against the configured entity index.

The dataset is resolved through the manifest file. Finished tables land in
the annotation store; tables already present are skipped, so an aborted
run can simply be restarted. When ground truth is available the run ends
with a precision and coverage report.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

var (
	annotateManifest  string
	annotateGenerator string
	annotateWorkers   int
	annotateExport    bool
)

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVar(&annotateManifest, "manifest", "datasets.yaml", "dataset manifest file")
	annotateCmd.Flags().StringVar(&annotateGenerator, "generator", "es-lookup", "candidate generator (es-lookup, es-lookup+embedding, es-lookup+vectors)")
	annotateCmd.Flags().IntVar(&annotateWorkers, "workers", 0, "parallel workers (0 = from config, 1 = serial)")
	annotateCmd.Flags().BoolVar(&annotateExport, "export", false, "export annotations to a Parquet file")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	manifest, err := dataset.LoadManifest(annotateManifest)
	if err != nil {
		return err
	}
	ds, err := manifest.Open(args[0])
	if err != nil {
		return err
	}

	annotator, _, err := newAnnotator(cfg, log, annotateGenerator, annotateWorkers)
	if err != nil {
		return err
	}

	tables, errs := annotator.AnnotateDataset(cmd.Context(), ds)
	for _, e := range errs {
		log.Error("annotation failure", "error", e)
	}
	log.Info("dataset done",
		"dataset", ds.Name(),
		"annotated", len(tables),
		"failed", len(errs))

	result := eval.ScoreTables(tables)
	if result.Target > 0 {
		log.Info("scores",
			"precision", fmt.Sprintf("%.4f", result.Precision()),
			"coverage", fmt.Sprintf("%.4f", result.Coverage()),
			"correct", result.Correct,
			"target", result.Target)
	}

	if annotateExport {
		exporter, err := export.NewExporter(cfg.Export.Dir)
		if err != nil {
			return err
		}
		path, err := exporter.Export(tables)
		if err != nil {
			return err
		}
		log.Info("annotations exported", "path", path)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d tables failed", len(errs))
	}
	return nil
}
