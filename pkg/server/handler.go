package server

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

const (
	msgEmbeddingsForbidden = "Insufficient permissions. Upgrade to Standard or Premium tier for embedding access."
	msgExportForbidden     = "Insufficient permissions. Upgrade to Premium tier for data export."
)

// served accounts a successful call of endpoint that returned n records
func (s *Server) served(c echo.Context, endpoint string, n int) {
	ctx := c.Request().Context()
	if s.recorder != nil {
		if id := identityFrom(ctx); id != nil {
			s.recorder.Record(ctx, id.PartnerID, endpoint, n)
		}
	}
	if s.metrics != nil {
		s.metrics.AddRecords(endpoint, n)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMemories(c echo.Context) error {
	in, err := listInput(c)
	if err != nil {
		return err
	}

	out, err := s.memories.List(c.Request().Context(), in)
	if err != nil {
		return err
	}

	s.served(c, "memories", len(out.Data))
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleTags(c echo.Context) error {
	out, err := s.memories.Tags(c.Request().Context(), memories.TagsInput{
		UserID:   c.QueryParam("userId"),
		Category: model.TagCategory(c.QueryParam("category")),
	})
	if err != nil {
		return err
	}

	s.served(c, "tags", len(out.Data))
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleMetadata(c echo.Context) error {
	out, err := s.memories.Metadata(c.Request().Context(), memories.MetadataInput{
		UserID: c.QueryParam("userId"),
		Type:   model.MetricType(c.QueryParam("type")),
	})
	if err != nil {
		return err
	}

	s.served(c, "metadata", 1)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleEmbeddings(c echo.Context) error {
	ctx := c.Request().Context()
	if !identityFrom(ctx).Has(model.PermissionReadEmbeddings) {
		return model.Forbidden(msgEmbeddingsForbidden)
	}

	in, err := embeddingsInput(c)
	if err != nil {
		return err
	}

	out, err := s.memories.Embeddings(ctx, in)
	if err != nil {
		return err
	}

	s.served(c, "embeddings", len(out.Data))
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleExport(c echo.Context) error {
	ctx := c.Request().Context()
	if !identityFrom(ctx).Has(model.PermissionExportData) {
		return model.Forbidden(msgExportForbidden)
	}

	x, err := s.memories.Export(ctx, memories.ExportInput{
		UserID: c.QueryParam("userId"),
		Format: memories.ExportFormat(c.QueryParam("format")),
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := x.Write(&buf); err != nil {
		return err
	}

	logging.From(ctx).Info("memories exported",
		"user_id", x.UserID,
		"format", x.Format,
		"records", len(x.Records))
	s.served(c, "export", len(x.Records))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+x.FileName()+`"`)
	return c.Blob(http.StatusOK, x.ContentType(), buf.Bytes())
}
