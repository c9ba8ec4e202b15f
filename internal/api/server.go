package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/plyio/internal/columns"
	"github.com/samcharles93/plyio/internal/logger"
	"github.com/samcharles93/plyio/internal/report"
	"github.com/samcharles93/plyio/internal/version"
	"github.com/samcharles93/plyio/pkg/ply"
)

const (
	DefaultMaxUploadBytes   = 64 << 20
	DefaultUploadsPerSecond = 4
	DefaultMaxResults       = 64
	DefaultMaxTableBytes    = 512 << 20
)

type Config struct {
	MaxUploadBytes   int64
	UploadsPerSecond float64
	// ListCapacity bounds list rows kept by conversions unless the request
	// overrides it.
	ListCapacity int
	// MaxTableBytes caps the column storage one upload may allocate.
	MaxTableBytes int64
	Logger        logger.Logger
}

type Server struct {
	store   *ResultStore
	limiter *rate.Limiter
	cfg     Config
	clock   func() time.Time
}

func NewServer(store *ResultStore, cfg Config) *Server {
	if store == nil {
		store = NewResultStore(DefaultMaxResults)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.UploadsPerSecond <= 0 {
		cfg.UploadsPerSecond = DefaultUploadsPerSecond
	}
	if cfg.MaxTableBytes <= 0 {
		cfg.MaxTableBytes = DefaultMaxTableBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	burst := max(1, int(cfg.UploadsPerSecond))
	return &Server{
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(cfg.UploadsPerSecond), burst),
		cfg:     cfg,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(serverHeader)
	e.POST("/v1/headers", s.handleInspect)
	e.POST("/v1/conversions", s.handleCreateConversion)
	e.GET("/v1/conversions/:id", s.handleGetConversion)
	e.DELETE("/v1/conversions/:id", s.handleDeleteConversion)
}

func serverHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		c.Response().Header().Set("Server", version.UserAgent())
		return next(c)
	}
}

// readUpload enforces the rate limit and size cap. On failure the error
// response has already been written and ok is false.
func (s *Server) readUpload(c *echo.Context) (data []byte, ok bool, err error) {
	if !s.limiter.Allow() {
		return nil, false, writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many uploads, retry later", "", "")
	}
	data, err = io.ReadAll(io.LimitReader(c.Request().Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, false, writeBadRequest(c, fmt.Sprintf("read body: %v", err), "")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		msg := fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes)
		return nil, false, writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", msg, "", "too_large")
	}
	if len(data) == 0 {
		return nil, false, writeBadRequest(c, "request body must be a PLY file", "")
	}
	return data, true, nil
}

func (s *Server) handleInspect(c *echo.Context) error {
	data, ok, err := s.readUpload(c)
	if !ok {
		return err
	}
	withStats, err := boolParam(c, "stats")
	if err != nil {
		return writeBadRequest(c, err.Error(), "stats")
	}
	capacity, err := s.listCapacity(c)
	if err != nil {
		return writeBadRequest(c, err.Error(), "list_capacity")
	}

	in := bytes.NewReader(data)
	r := ply.NewReader()
	if err := r.ReadHeader(in); err != nil {
		return writePLYError(c, err)
	}
	if withStats {
		tbl, err := columns.Load(r, in, s.tableOptions(capacity, data))
		if err != nil {
			return writePLYError(c, err)
		}
		out := report.FromReader(r)
		out.Stats = tbl.Stats()
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusOK, report.FromReader(r))
}

func (s *Server) handleCreateConversion(c *echo.Context) error {
	data, ok, err := s.readUpload(c)
	if !ok {
		return err
	}
	format := ply.FormatBinaryLittleEndian
	if q := c.QueryParam("format"); q != "" {
		if format, err = columns.ParseFormat(q); err != nil {
			return writeBadRequest(c, err.Error(), "format")
		}
	}
	capacity, err := s.listCapacity(c)
	if err != nil {
		return writeBadRequest(c, err.Error(), "list_capacity")
	}

	in := bytes.NewReader(data)
	r := ply.NewReader()
	if err := r.ReadHeader(in); err != nil {
		return writePLYError(c, err)
	}
	tbl, err := columns.Load(r, in, s.tableOptions(capacity, data))
	if err != nil {
		return writePLYError(c, err)
	}
	w, err := tbl.Writer(format)
	if err != nil {
		return writePLYError(c, err)
	}
	var out bytes.Buffer
	if err := w.Write(&out); err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}

	conv := Conversion{Format: format.String(), Warnings: r.Warnings()}
	for _, e := range r.Elements() {
		conv.Elements = append(conv.Elements, Count{Name: e.Name, Count: e.Count})
	}
	conv = s.store.Save(conv, out.Bytes(), s.clock())
	s.cfg.Logger.Info("conversion stored", "id", conv.ID, "format", conv.Format, "bytes", conv.Bytes)
	return c.JSON(http.StatusCreated, conv)
}

func (s *Server) handleGetConversion(c *echo.Context) error {
	conv, data, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "conversion not found")
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEOctetStream)
	res.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ply"`, conv.ID))
	res.Header().Set("Content-Length", strconv.Itoa(len(data)))
	res.WriteHeader(http.StatusOK)
	_, err := res.Write(data)
	return err
}

type deleteConversionResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleDeleteConversion(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "conversion not found")
	}
	return c.JSON(http.StatusOK, deleteConversionResp{ID: id, Object: "conversion.deleted", Deleted: true})
}

// tableOptions bounds column allocation by the upload size and the
// configured cap, so the declared element counts cannot outgrow the data.
func (s *Server) tableOptions(capacity int, data []byte) columns.Options {
	return columns.Options{
		ListCapacity: capacity,
		BodyBytes:    int64(len(data)),
		MaxBytes:     s.cfg.MaxTableBytes,
	}
}

func (s *Server) listCapacity(c *echo.Context) (int, error) {
	q := c.QueryParam("list_capacity")
	if q == "" {
		return s.cfg.ListCapacity, nil
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 1 {
		return 0, newInvalidRequest(fmt.Sprintf("list_capacity must be a positive integer, got %q", q))
	}
	return n, nil
}

func boolParam(c *echo.Context, name string) (bool, error) {
	q := c.QueryParam(name)
	if q == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(q)
	if err != nil {
		return false, newInvalidRequest(fmt.Sprintf("%s must be a boolean, got %q", name, q))
	}
	return v, nil
}
