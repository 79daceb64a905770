package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/browser"
	"github.com/polzovatel/mmid-page-model/internal/output"
	"github.com/polzovatel/mmid-page-model/internal/pagemodel"
	"github.com/polzovatel/mmid-page-model/internal/tree"
)

type Toolbox interface {
	Describe() []Tool
	Invoke(ctx context.Context, name string, input map[string]any) (Result, error)
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type Result struct {
	Observation string
}

type standard struct {
	ctrl   browser.Controller
	svc    *pagemodel.Service
	page   pagemodel.Page
	logger zerolog.Logger
	tools  []Tool
}

// New returns the toolbox driving ctrl. page is the model view of the same
// browser page.
func New(ctrl browser.Controller, svc *pagemodel.Service, page pagemodel.Page, logger zerolog.Logger) Toolbox {
	return &standard{
		ctrl:   ctrl,
		svc:    svc,
		page:   page,
		logger: logger,
		tools: []Tool{
			newTool("navigate", "Open URL. Identifiers from the previous page are lost", schema{"url": str("url to open")}, []string{"url"}),
			newTool("inject_ids", "Tag interactive elements with mmid identifiers; returns the highest identifier or -1", schema{}, nil),
			newTool("dom_tree", "Return the pruned page tree of identified elements as JSON", schema{"only_input_fields": boolean("keep only form and input nodes")}, nil),
			newTool("form_fields", "Return form controls keyed by mmid as JSON", schema{}, nil),
			newTool("cleanup_ids", "Remove identifiers and debug borders from the page", schema{}, nil),
			newTool("click_mmid", "Click element by mmid", schema{"mmid": integer("element identifier")}, []string{"mmid"}),
			newTool("fill_mmid", "Fill input by mmid", schema{"mmid": integer("element identifier"), "text": str("text to type")}, []string{"mmid", "text"}),
			newTool("read_mmid", "Read text or value of element by mmid", schema{"mmid": integer("element identifier")}, []string{"mmid"}),
			newTool("hover_mmid", "Hover element by mmid to reveal hidden content", schema{"mmid": integer("element identifier")}, []string{"mmid"}),
			newTool("wait_stable", "Wait until the page stops changing", schema{"timeout_ms": integer("timeout ms")}, nil),
			newTool("save_state", "Save current storage state", schema{"path": str("path to save")}, []string{"path"}),
		},
	}
}

func (s *standard) Describe() []Tool {
	return append([]Tool(nil), s.tools...)
}

func (s *standard) Invoke(ctx context.Context, name string, input map[string]any) (Result, error) {
	if input == nil {
		input = map[string]any{}
	}
	s.logger.Debug().Str("tool", name).Msg("invoke")
	switch name {
	case "navigate":
		url, err := requiredString(input, "url")
		if err != nil {
			return Result{}, err
		}
		if err := s.ctrl.Navigate(ctx, url); err != nil {
			return Result{}, err
		}
		return Result{Observation: fmt.Sprintf("opened %s", url)}, nil

	case "inject_ids":
		high, err := s.svc.InjectIdentifiers(ctx, s.page)
		if err != nil {
			return Result{}, err
		}
		if high < 0 {
			return Result{Observation: "no interactive elements found (-1)"}, nil
		}
		return Result{Observation: fmt.Sprintf("highest mmid: %d", high)}, nil

	case "dom_tree":
		root := s.svc.BuildTree(ctx, s.page, tree.Options{OnlyInputFields: optionalBool(input, "only_input_fields")})
		return encode(root)

	case "form_fields":
		return encode(s.svc.GetFields(ctx, s.page))

	case "cleanup_ids":
		if err := s.svc.CleanupIdentifiers(ctx, s.page); err != nil {
			return Result{}, err
		}
		return Result{Observation: "identifiers removed"}, nil

	case "click_mmid":
		id, err := requiredMMID(input)
		if err != nil {
			return Result{}, err
		}
		if err := s.ctrl.Click(ctx, id); err != nil {
			return Result{}, err
		}
		return Result{Observation: fmt.Sprintf("clicked mmid %d", id)}, nil

	case "fill_mmid":
		id, err := requiredMMID(input)
		if err != nil {
			return Result{}, err
		}
		text, err := requiredString(input, "text")
		if err != nil {
			return Result{}, err
		}
		if err := s.ctrl.Fill(ctx, id, text); err != nil {
			return Result{}, err
		}
		return Result{Observation: fmt.Sprintf("filled mmid %d", id)}, nil

	case "read_mmid":
		id, err := requiredMMID(input)
		if err != nil {
			return Result{}, err
		}
		text, err := s.ctrl.Read(ctx, id)
		if err != nil {
			return Result{}, err
		}
		return Result{Observation: text}, nil

	case "hover_mmid":
		id, err := requiredMMID(input)
		if err != nil {
			return Result{}, err
		}
		if err := s.ctrl.Hover(ctx, id); err != nil {
			return Result{}, err
		}
		return Result{Observation: fmt.Sprintf("hovered mmid %d", id)}, nil

	case "wait_stable":
		timeout := time.Duration(optionalInt(input, "timeout_ms")) * time.Millisecond
		if err := s.ctrl.WaitForStableDOM(ctx, timeout); err != nil {
			return Result{}, err
		}
		return Result{Observation: "page stable"}, nil

	case "save_state":
		path, err := requiredString(input, "path")
		if err != nil {
			return Result{}, err
		}
		if err := s.ctrl.SaveState(ctx, path); err != nil {
			return Result{}, err
		}
		return Result{Observation: fmt.Sprintf("state saved to %s", path)}, nil

	default:
		return Result{}, fmt.Errorf("unknown tool %s", name)
	}
}

func encode(v any) (Result, error) {
	var buf bytes.Buffer
	if err := output.PrintJSON(&buf, v, false); err != nil {
		return Result{}, err
	}
	return Result{Observation: strings.TrimSpace(buf.String())}, nil
}

// Helpers for schema and extraction.
type schema map[string]any

func newTool(name, desc string, props schema, required []string) Tool {
	return Tool{
		Name:        name,
		Description: desc,
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any(props),
			"required":   required,
		},
	}
}

func str(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func requiredString(input map[string]any, key string) (string, error) {
	val, ok := input[key]
	if !ok {
		return "", fmt.Errorf("field %s required", key)
	}
	switch v := val.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("field %s empty", key)
		}
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("field %s must be string", key)
	}
}

func optionalBool(input map[string]any, key string) bool {
	val, ok := input[key]
	if !ok {
		return false
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

func requiredInt(input map[string]any, key string) (int, error) {
	val, ok := input[key]
	if !ok {
		return 0, fmt.Errorf("field %s required", key)
	}
	switch v := val.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %s must be integer: %w", key, err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("field %s must be integer", key)
	}
}

func requiredMMID(input map[string]any) (int, error) {
	id, err := requiredInt(input, "mmid")
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("field mmid must not be negative")
	}
	return id, nil
}

func optionalInt(input map[string]any, key string) int {
	val, ok := input[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	default:
		return 0
	}
}
