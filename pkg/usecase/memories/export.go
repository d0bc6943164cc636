package memories

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
)

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

var csvHeader = []string{"id", "type", "createdAt", "sourceFlow", "content", "tags", "emotions", "sentimentScore"}

type ExportInput struct {
	UserID string
	Format ExportFormat
}

// Export holds every memory of one user, newest first
type Export struct {
	UserID     string
	Format     ExportFormat
	ExportedAt time.Time
	Records    []*model.MemoryRecord
}

// Export collects all memories of a user without pagination
func (u *UseCase) Export(ctx context.Context, in ExportInput) (*Export, error) {
	if in.UserID == "" {
		return nil, model.BadRequest(msgUserIDRequired)
	}

	switch in.Format {
	case "":
		in.Format = ExportFormatJSON
	case ExportFormatJSON, ExportFormatCSV:
	case ExportFormatPDF:
		return nil, model.BadRequest("pdf export is not supported by this server, use json or csv")
	default:
		return nil, model.BadRequest("format must be one of json, csv")
	}

	records, err := u.collect(ctx, ListInput{
		UserID:    in.UserID,
		SortBy:    DefaultSortBy,
		SortOrder: model.SortOrderDesc,
	})
	if err != nil {
		return nil, err
	}

	return &Export{
		UserID:     in.UserID,
		Format:     in.Format,
		ExportedAt: u.now(),
		Records:    records,
	}, nil
}

func (x *Export) ContentType() string {
	if x.Format == ExportFormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// FileName is the default object or file name of the export
func (x *Export) FileName() string {
	return x.UserID + "_" + x.ExportedAt.UTC().Format("20060102T150405Z") + "." + string(x.Format)
}

// Write renders the export in its format
func (x *Export) Write(w io.Writer) error {
	if x.Format == ExportFormatCSV {
		return x.writeCSV(w)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"userId":     x.UserID,
		"exportedAt": x.ExportedAt.UnixMilli(),
		"total":      len(x.Records),
		"data":       x.Records,
	}); err != nil {
		return goerr.Wrap(err, "failed to encode json export", goerr.V("user_id", x.UserID))
	}
	return nil
}

func (x *Export) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return goerr.Wrap(err, "failed to write csv header")
	}

	for _, r := range x.Records {
		sentiment := ""
		if r.SentimentScore != nil {
			sentiment = strconv.FormatFloat(*r.SentimentScore, 'f', -1, 64)
		}
		row := []string{
			r.ID,
			string(r.Type),
			strconv.FormatInt(r.CreatedAt, 10),
			string(r.SourceFlow),
			r.Content,
			strings.Join(r.Tags, ";"),
			strings.Join(r.Emotions.Values(), ";"),
			sentiment,
		}
		if err := cw.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write csv row", goerr.V("id", r.ID))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush csv export")
	}
	return nil
}

// ExportRow is the flattened BigQuery representation of one memory
type ExportRow struct {
	UserID         string               `bigquery:"user_id"`
	ID             string               `bigquery:"id"`
	Type           string               `bigquery:"type"`
	Content        string               `bigquery:"content"`
	CreatedAt      time.Time            `bigquery:"created_at"`
	SourceFlow     string               `bigquery:"source_flow"`
	Tags           []string             `bigquery:"tags"`
	Emotions       []string             `bigquery:"emotions"`
	SentimentScore bigquery.NullFloat64 `bigquery:"sentiment_score"`
	VectorID       string               `bigquery:"vector_id"`
	Metadata       string               `bigquery:"metadata"`
	ExportedAt     time.Time            `bigquery:"exported_at"`
}

// Rows converts the export for a streaming insert
func (x *Export) Rows() ([]*ExportRow, error) {
	rows := make([]*ExportRow, 0, len(x.Records))
	for _, r := range x.Records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode metadata", goerr.V("id", r.ID))
		}

		row := &ExportRow{
			UserID:     x.UserID,
			ID:         r.ID,
			Type:       string(r.Type),
			Content:    r.Content,
			CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
			SourceFlow: string(r.SourceFlow),
			Tags:       r.Tags,
			Emotions:   r.Emotions.Values(),
			VectorID:   r.Embeddings.VectorID,
			Metadata:   string(meta),
			ExportedAt: x.ExportedAt.UTC(),
		}
		if r.SentimentScore != nil {
			row.SentimentScore = bigquery.NullFloat64{Float64: *r.SentimentScore, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
