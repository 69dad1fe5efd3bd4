package server

import (
	"github.com/ironsheep/stroke-crossings/internal/detection"
	"github.com/ironsheep/stroke-crossings/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional sub-rectangle to analyse. (x1,y1) inclusive, (x2,y2) exclusive. Coordinates in results are reported in full-image space.",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func whiteLevelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Gray level (1-255) at or above which a pixel counts as paper. 255 treats only pure white as background.",
		"default":     int(imaging.WhiteLevel),
		"minimum":     1,
		"maximum":     255,
	}
}

// detectionProperties returns the schema properties shared by every
// crossing detection tool, merged with extra.
func detectionProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"depth_limit": map[string]interface{}{
			"type":        "integer",
			"description": "Search depth limit per pixel. Larger values look further along each stroke.",
			"default":     detection.DefaultDepthLimit,
			"minimum":     0,
		},
		"line_width": map[string]interface{}{
			"type":        "integer",
			"description": "Expected stroke thickness in pixels. A pixel is a crossing when its search frontier exceeds two line widths.",
			"default":     detection.DefaultLineWidth,
			"minimum":     1,
		},
		"depth_metric": map[string]interface{}{
			"type":        "string",
			"enum":        []string{detection.DequeueCount.String(), detection.Level.String()},
			"description": "What the depth limit counts: 'dequeue' bounds pixels processed, 'level' bounds hops from the origin.",
			"default":     detection.DequeueCount.String(),
		},
		"white_level": whiteLevelProperty(),
		"region":      regionProperty(),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and number of ink (non-white) pixels. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_binarize",
			Description: "Return the foreground mask the detector sees as a base64-encoded PNG: ink black, paper white.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty(),
					"white_level": whiteLevelProperty(),
					"region":      regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_count_crossings",
			Description: "Count the pixels classified as stroke crossings. Each ink pixel is probed with a bounded 8-connected search; a pixel counts when the search frontier at the cutoff is wider than two line widths.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_find_crossings",
			Description: "List every crossing pixel with its coordinates and frontier size, in row-major order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": detectionProperties(map[string]interface{}{
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of crossings to return; 0 returns all. The total is always reported.",
						"default":     0,
						"minimum":     0,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_annotate_crossings",
			Description: "Draw a marker around every crossing. Returns the annotated image as base64-encoded PNG, or writes it to output_path when given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": detectionProperties(map[string]interface{}{
					"marker_color": map[string]interface{}{
						"type":        "string",
						"description": "Marker colour in hex format (#RRGGBB)",
						"default":     imaging.DefaultMarkerColor,
					},
					"marker_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Half-width of each square marker in pixels. Defaults to the line width.",
						"minimum":     0,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write instead of returning image data. Format follows the extension.",
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return okResponse(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
