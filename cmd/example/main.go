// Command example runs the engine against an in-memory host so the full
// loop is observable without an editor: open a document, drive the surface
// protocol, run a structural command, and generate code to a local directory.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	loctree "github.com/loctree/loctree"
)

const sampleURI = "mem:///sample.loctree.json"

const sampleDocument = `{
  "model": {
    "name": "Storefront",
    "settings": {
      "primaryLanguage": "en",
      "languages": ["en", "de"],
      "resourcesUnderRoot": true,
      "categoriesEnabled": true,
      "generator": {"template": "typescript", "outDir": "./out"}
    },
    "categories": [
      {
        "name": "Checkout",
        "resources": [
          {
            "name": "PayNow",
            "values": {"en": "Pay now", "de": "Jetzt bezahlen"}
          }
        ]
      }
    ],
    "resources": [
      {"name": "Welcome", "values": {"en": "Welcome!", "de": "Willkommen!"}}
    ]
  }
}`

type consoleHost struct {
	mu      sync.Mutex
	docs    map[string]string
	version int
	inputs  []string
}

func (h *consoleHost) Snapshot(uri string) (loctree.DocumentSnapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	text, ok := h.docs[uri]
	if !ok {
		return loctree.DocumentSnapshot{}, false
	}
	return loctree.DocumentSnapshot{URI: uri, Text: text, Version: h.version, Reason: "user"}, true
}

func (h *consoleHost) ApplyEdit(_ context.Context, uri string, text string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs[uri] = text
	h.version++
	fmt.Printf("host: document edited (version %d, %d bytes)\n", h.version, len(text))
	return true, nil
}

func (h *consoleHost) Confirm(_ context.Context, message string) (bool, error) {
	fmt.Printf("host: confirm %q -> yes\n", message)
	return true, nil
}

func (h *consoleHost) InputBox(_ context.Context, opts loctree.InputBoxOptions) (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.inputs) == 0 {
		return "", false, nil
	}
	value := h.inputs[0]
	h.inputs = h.inputs[1:]
	if opts.Validate != nil {
		if problem := opts.Validate(value); problem != "" {
			fmt.Printf("host: input %q rejected: %s\n", value, problem)
			return "", false, nil
		}
	}
	fmt.Printf("host: input %q -> %q\n", opts.Prompt, value)
	return value, true, nil
}

func (h *consoleHost) Notify(level loctree.NotifyLevel, message string) {
	fmt.Printf("host: [%s] %s\n", level, message)
}

type consoleSurface struct{}

func (consoleSurface) Post(_ context.Context, message any) error {
	env, ok := message.(loctree.Envelope)
	if !ok {
		return nil
	}
	summary := ""
	if len(env.Payload) > 0 {
		compact := string(env.Payload)
		if len(compact) > 100 {
			compact = compact[:100] + "..."
		}
		summary = " " + compact
	}
	fmt.Printf("surface: <- %s%s\n", env.Command, summary)
	return nil
}

type tsGenerator struct{}

func (tsGenerator) Templates() loctree.TemplateCatalog {
	return loctree.TemplateCatalog{Groups: []loctree.TemplateGroup{{
		Name:  "typescript",
		Label: "TypeScript",
		Settings: []loctree.TemplateSetting{
			{Name: "template", Label: "Template", Required: true, Enum: []string{"typescript"}},
			{Name: "outDir", Label: "Output directory", Required: true},
		},
	}}}
}

func (tsGenerator) Generate(_ context.Context, req loctree.GenerateRequest) ([]loctree.GeneratedFile, error) {
	var doc struct {
		Model struct {
			Name      string `json:"name"`
			Resources []struct {
				Name   string            `json:"name"`
				Values map[string]string `json:"values"`
			} `json:"resources"`
		} `json:"model"`
	}
	if err := json.Unmarshal(req.Model, &doc); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Generated from %s.\n", doc.Model.Name)
	fmt.Fprintf(&b, "export const resources = {\n")
	for _, res := range doc.Model.Resources {
		fmt.Fprintf(&b, "  %s: %q,\n", res.Name, res.Values[req.PrimaryLanguage])
	}
	b.WriteString("};\n")

	out := req.Settings["outDir"]
	if out == "" {
		out = "."
	}
	return []loctree.GeneratedFile{
		{Path: filepath.Join(out, "resources.ts"), Content: []byte(b.String())},
	}, nil
}

type diskWriter struct{}

func (diskWriter) WriteFile(_ context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fmt.Printf("writer: %s (%d bytes)\n", path, len(data))
	return os.WriteFile(path, data, 0o644)
}

func main() {
	ctx := context.Background()

	cfg := loctree.DefaultConfig()
	cfg.Logging.Format = "console"
	cfg.Generation.MinDuration = 0

	host := &consoleHost{
		docs:   map[string]string{sampleURI: sampleDocument},
		inputs: []string{"Emails"},
	}

	engine, err := loctree.New(cfg, loctree.Dependencies{
		Host:      host,
		Surface:   consoleSurface{},
		Generator: tsGenerator{},
		Writer:    diskWriter{},
		StatusListener: func(snap loctree.StatusSnapshot) {
			fmt.Printf("status: %s %s\n", snap.State, snap.Message)
		},
	})
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	if _, err := engine.OpenDocument(ctx, sampleURI); err != nil {
		log.Fatalf("open: %v", err)
	}

	// Simulate the surface selecting an element for editing.
	selectRaw := []byte(`{"command":"select","version":1,"payload":{"kind":"resource","path":"Checkout/PayNow","reload":true}}`)
	if err := engine.Dispatch(ctx, selectRaw); err != nil {
		log.Fatalf("dispatch select: %v", err)
	}

	// Structural edit through the command surface; the host answers the
	// category-name prompt from its scripted input queue.
	if err := engine.Commands().AddCategory.Execute(ctx, loctree.AddCategoryMessage{}); err != nil {
		log.Fatalf("add category: %v", err)
	}

	if err := engine.Commands().RunGenerator.Execute(ctx, loctree.RunGeneratorMessage{}); err != nil {
		log.Fatalf("generate: %v", err)
	}
}
