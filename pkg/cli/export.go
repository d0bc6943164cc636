package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg             config
		userID          string
		format          string
		output          string
		bucket          string
		object          string
		bigqueryProject string
		bigqueryDataset string
		bigqueryTable   string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User whose memories are exported",
			Sources:     cli.EnvVars("MEMORIA_EXPORT_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Export format (json, csv)",
			Value:       string(memories.ExportFormatJSON),
			Sources:     cli.EnvVars("MEMORIA_EXPORT_FORMAT"),
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file, stdout when omitted and no other sink is given",
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket to upload the export to",
			Sources:     cli.EnvVars("MEMORIA_EXPORT_BUCKET"),
			Destination: &bucket,
		},
		&cli.StringFlag{
			Name:        "object",
			Usage:       "Object name in the bucket (default <userId>_<timestamp>.<format>)",
			Destination: &object,
		},
		&cli.StringFlag{
			Name:        "bigquery-project",
			Usage:       "BigQuery project ID (default --project)",
			Sources:     cli.EnvVars("MEMORIA_BIGQUERY_PROJECT"),
			Destination: &bigqueryProject,
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset",
			Usage:       "BigQuery dataset to stream rows into",
			Sources:     cli.EnvVars("MEMORIA_BIGQUERY_DATASET"),
			Destination: &bigqueryDataset,
		},
		&cli.StringFlag{
			Name:        "bigquery-table",
			Usage:       "BigQuery table to stream rows into",
			Value:       "memories",
			Sources:     cli.EnvVars("MEMORIA_BIGQUERY_TABLE"),
			Destination: &bigqueryTable,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export every memory of a user to a file, Cloud Storage or BigQuery",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setupLogger(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			x, err := memories.New(repo).Export(ctx, memories.ExportInput{
				UserID: userID,
				Format: memories.ExportFormat(format),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to export memories")
			}

			if bucket != "" {
				if err := exportToStorage(ctx, &cfg, x, bucket, object); err != nil {
					return err
				}
			}

			if bigqueryDataset != "" {
				if err := exportToBigQuery(ctx, &cfg, x, bigqueryProject, bigqueryDataset, bigqueryTable); err != nil {
					return err
				}
			}

			if output != "" {
				return exportToFile(ctx, x, output)
			}
			if bucket == "" && bigqueryDataset == "" {
				return x.Write(c.Root().Writer)
			}
			return nil
		},
	}
}

func exportToFile(ctx context.Context, x *memories.Export, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create output file", goerr.V("path", path))
	}
	if err := x.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close output file", goerr.V("path", path))
	}

	logging.From(ctx).Info("export written", "path", path, "records", len(x.Records))
	return nil
}

func exportToStorage(ctx context.Context, cfg *config, x *memories.Export, bucket, object string) error {
	storage, err := cfg.newStorage(ctx, bucket)
	if err != nil {
		return err
	}
	defer storage.Close()

	if object == "" {
		object = x.FileName()
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := storage.Put(uploadCtx, object, x.ContentType())
	if err != nil {
		return err
	}
	if err := upload(w, x, cancel); err != nil {
		return goerr.Wrap(err, "failed to upload export", goerr.V("bucket", bucket), goerr.V("object", object))
	}

	logging.From(ctx).Info("export uploaded",
		"bucket", bucket,
		"object", object,
		"records", len(x.Records))
	return nil
}

// upload writes the export and commits the object on Close. A failed write
// cancels the upload so that no partial object is stored.
func upload(w io.WriteCloser, x *memories.Export, cancel context.CancelFunc) error {
	if err := x.Write(w); err != nil {
		cancel()
		_ = w.Close()
		return err
	}
	return w.Close()
}

func exportToBigQuery(ctx context.Context, cfg *config, x *memories.Export, project, dataset, table string) error {
	if table == "" {
		return goerr.New("bigquery-table is required")
	}

	bq, err := cfg.newBigQuery(ctx, project)
	if err != nil {
		return err
	}
	defer bq.Close()

	rows, err := x.Rows()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		logging.From(ctx).Info("nothing to insert into bigquery", "user_id", x.UserID)
		return nil
	}

	if err := bq.Insert(ctx, dataset, table, rows); err != nil {
		return err
	}

	logging.From(ctx).Info("export inserted into bigquery",
		"dataset", dataset,
		"table", table,
		"rows", len(rows))
	return nil
}
