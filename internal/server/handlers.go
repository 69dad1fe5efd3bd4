package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/stroke-crossings/internal/detection"
	"github.com/ironsheep/stroke-crossings/internal/imaging"
	"github.com/ironsheep/stroke-crossings/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_count_crossings").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	out, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start))

	return okResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": mustMarshalJSON(out),
			},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies server defaults for omitted parameters
//  3. Loads images from cache and crops them to the requested region
//  4. Runs the detector
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_binarize":
		return s.handleImageBinarize(args)
	case "image_count_crossings":
		return s.handleCountCrossings(ctx, args)
	case "image_find_crossings":
		return s.handleFindCrossings(ctx, args)
	case "image_annotate_crossings":
		return s.handleAnnotateCrossings(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse builds an error reply. An empty data string is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: jsonrpcVersion, ID: id, Error: e}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageBinarizeArgs struct {
	Path       string          `json:"path"`
	WhiteLevel *int            `json:"white_level"`
	Region     *imaging.Region `json:"region"`
}

type binarizeResult struct {
	*imaging.EncodedImage
	ForegroundPixels int `json:"foreground_pixels"`
}

func (s *Server) handleImageBinarize(args json.RawMessage) (interface{}, error) {
	var a imageBinarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := s.loadSource(a.Path, a.Region, a.WhiteLevel)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(src.mask.ToGray())
	if err != nil {
		return nil, err
	}
	return &binarizeResult{EncodedImage: encoded, ForegroundPixels: src.mask.ForegroundCount()}, nil
}

// === Detection Handlers ===

// detectArgs are the arguments shared by every detection tool. Pointer
// fields distinguish "omitted" from an explicit zero, which is a valid depth
// limit.
type detectArgs struct {
	Path        string          `json:"path"`
	DepthLimit  *int            `json:"depth_limit"`
	LineWidth   *int            `json:"line_width"`
	DepthMetric string          `json:"depth_metric"`
	WhiteLevel  *int            `json:"white_level"`
	Region      *imaging.Region `json:"region"`
}

// options merges a's overrides into the server defaults.
func (s *Server) options(a detectArgs) (detection.Options, error) {
	opts := s.cfg.DetectionOptions()
	if a.DepthLimit != nil {
		opts.DepthLimit = *a.DepthLimit
	}
	if a.LineWidth != nil {
		opts.LineWidth = *a.LineWidth
	}
	if a.DepthMetric != "" {
		m, err := detection.ParseDepthMetric(a.DepthMetric)
		if err != nil {
			return opts, err
		}
		opts.Metric = m
	}
	return opts, opts.Validate()
}

// source is a decoded image (cropped to the requested region) together with
// its foreground mask.
type source struct {
	img    image.Image
	mask   *raster.BinaryImage
	offset image.Point
}

func (s *Server) loadSource(path string, region *imaging.Region, whiteLevel *int) (*source, error) {
	level := s.cfg.WhiteLevel
	if whiteLevel != nil {
		if *whiteLevel < 1 || *whiteLevel > 255 {
			return nil, fmt.Errorf("white_level must be between 1 and 255, got %d", *whiteLevel)
		}
		level = uint8(*whiteLevel)
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	var offset image.Point
	if region != nil {
		b := img.Bounds()
		offset = image.Pt(region.X1, region.Y1)
		// Regions are given relative to the image's top-left corner.
		shifted := imaging.Region{
			X1: region.X1 + b.Min.X, Y1: region.Y1 + b.Min.Y,
			X2: region.X2 + b.Min.X, Y2: region.Y2 + b.Min.Y,
		}
		if img, err = imaging.Crop(img, shifted); err != nil {
			return nil, err
		}
	}

	return &source{
		img:    img,
		mask:   raster.FromGray(imaging.ToGray(img, level)),
		offset: offset,
	}, nil
}

type detectionResult struct {
	Path             string `json:"path"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	ForegroundPixels int    `json:"foreground_pixels"`
	DepthLimit       int    `json:"depth_limit"`
	LineWidth        int    `json:"line_width"`
	DepthMetric      string `json:"depth_metric"`
	Count            int    `json:"count"`
	ElapsedMS        int64  `json:"elapsed_ms"`
}

// detect runs a scan for a. When collect is set the crossings are returned
// in full-image coordinates.
func (s *Server) detect(ctx context.Context, a detectArgs, collect bool) (*detectionResult, []detection.Crossing, *source, error) {
	opts, err := s.options(a)
	if err != nil {
		return nil, nil, nil, err
	}
	scanner, err := detection.NewScanner(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := s.loadSource(a.Path, a.Region, a.WhiteLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	start := time.Now()
	var (
		count int
		found []detection.Crossing
	)
	if collect {
		found, err = scanner.Find(ctx, src.mask)
		count = len(found)
	} else {
		count, err = scanner.CountContext(ctx, src.mask)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	for i := range found {
		found[i].X += src.offset.X
		found[i].Y += src.offset.Y
	}

	return &detectionResult{
		Path:             a.Path,
		Width:            src.mask.Width(),
		Height:           src.mask.Height(),
		ForegroundPixels: src.mask.ForegroundCount(),
		DepthLimit:       opts.DepthLimit,
		LineWidth:        opts.LineWidth,
		DepthMetric:      opts.Metric.String(),
		Count:            count,
		ElapsedMS:        time.Since(start).Milliseconds(),
	}, found, src, nil
}

func (s *Server) handleCountCrossings(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, _, _, err := s.detect(ctx, a, false)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type findCrossingsArgs struct {
	detectArgs
	MaxResults int `json:"max_results"`
}

type findResult struct {
	detectionResult
	Crossings []detection.Crossing `json:"crossings"`
	Truncated bool                 `json:"truncated"`
}

func (s *Server) handleFindCrossings(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a findCrossingsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxResults < 0 {
		return nil, fmt.Errorf("max_results cannot be negative (%d)", a.MaxResults)
	}
	res, found, _, err := s.detect(ctx, a.detectArgs, true)
	if err != nil {
		return nil, err
	}

	out := &findResult{detectionResult: *res, Crossings: found}
	if out.Crossings == nil {
		out.Crossings = []detection.Crossing{}
	}
	if a.MaxResults > 0 && len(found) > a.MaxResults {
		out.Crossings = found[:a.MaxResults]
		out.Truncated = true
	}
	return out, nil
}

type annotateCrossingsArgs struct {
	detectArgs
	MarkerColor  string `json:"marker_color"`
	MarkerRadius *int   `json:"marker_radius"`
	OutputPath   string `json:"output_path"`
}

type annotateResult struct {
	detectionResult
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
}

func (s *Server) handleAnnotateCrossings(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a annotateCrossingsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MarkerColor == "" {
		a.MarkerColor = s.cfg.MarkerColor
	}

	res, found, src, err := s.detect(ctx, a.detectArgs, true)
	if err != nil {
		return nil, err
	}

	radius := res.LineWidth
	if a.MarkerRadius != nil {
		radius = *a.MarkerRadius
	}

	// Markers are drawn on the (cropped) source, so map back into its space.
	points := make([]image.Point, len(found))
	for i, c := range found {
		points[i] = image.Pt(c.X, c.Y).Sub(src.offset)
	}

	if a.OutputPath != "" {
		if err := imaging.SaveAnnotated(a.OutputPath, src.img, points, a.MarkerColor, radius); err != nil {
			return nil, err
		}
		return &annotateResult{detectionResult: *res, OutputPath: a.OutputPath}, nil
	}

	annotated, err := imaging.Annotate(src.img, points, a.MarkerColor, radius)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(annotated)
	if err != nil {
		return nil, err
	}
	return &annotateResult{
		detectionResult: *res,
		ImageBase64:     encoded.ImageBase64,
		MimeType:        encoded.MimeType,
	}, nil
}
