package graphsp

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/briday1/graph-sp/pkg/api"
)

// ErrNilWriter indicates that a nil writer was provided to an exporter.
var ErrNilWriter = errors.New("graphsp: nil writer")

// MermaidOption configures the behaviour of ExportMermaid.
type MermaidOption func(*mermaidConfig)

type mermaidConfig struct {
	direction  string
	showStyles bool
}

// MermaidWithDirection sets the flowchart direction ("TD", "LR", ...).
func MermaidWithDirection(dir string) MermaidOption {
	return func(cfg *mermaidConfig) {
		if dir != "" {
			cfg.direction = dir
		}
	}
}

// MermaidWithoutStyles suppresses the branch/variant fill styling.
func MermaidWithoutStyles() MermaidOption {
	return func(cfg *mermaidConfig) {
		cfg.showStyles = false
	}
}

// branch nodes share one fill; variants cycle through a small palette.
var (
	branchFill     = "#e1f5ff"
	variantPalette = []string{"#ffe1e1", "#e1ffe1", "#ffe1ff", "#ffffe1"}
)

// ExportMermaid renders a built Dag as a Mermaid flowchart: one box per
// node, edges labelled with the context-name → parameter-name mappings they
// carry, and fill styles marking branch and variant membership. The Dag is
// treated as read-only.
func ExportMermaid(w io.Writer, d Dag, opts ...MermaidOption) error {
	if w == nil {
		return ErrNilWriter
	}

	cfg := mermaidConfig{direction: "TD", showStyles: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	nodes := d.Nodes()
	byID := make(map[NodeID]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	if _, err := fmt.Fprintf(w, "graph %s\n", cfg.direction); err != nil {
		return err
	}

	for _, n := range nodes {
		if _, err := fmt.Fprintf(w, "    %d[\"%s\"]\n", n.ID, mermaidQuote(n.DisplayName())); err != nil {
			return err
		}
	}

	seen := make(map[[2]NodeID]struct{})
	for _, n := range nodes {
		deps := append([]NodeID(nil), n.Deps...)
		sort.Ints(deps)
		for _, dep := range deps {
			edge := [2]NodeID{dep, n.ID}
			if _, dup := seen[edge]; dup {
				continue
			}
			seen[edge] = struct{}{}

			label := edgeLabel(byID[dep], n)
			var err error
			if label == "" {
				_, err = fmt.Fprintf(w, "    %d --> %d\n", dep, n.ID)
			} else {
				_, err = fmt.Fprintf(w, "    %d -->|%s| %d\n", dep, label, n.ID)
			}
			if err != nil {
				return err
			}
		}
	}

	if cfg.showStyles {
		for _, n := range nodes {
			if n.IsBranch {
				if _, err := fmt.Fprintf(w, "    style %d fill:%s\n", n.ID, branchFill); err != nil {
					return err
				}
			}
		}
		for _, n := range nodes {
			if n.Variant == NoVariant {
				continue
			}
			fill := variantPalette[n.Variant%len(variantPalette)]
			if _, err := fmt.Fprintf(w, "    style %d fill:%s\n", n.ID, fill); err != nil {
				return err
			}
		}
	}

	return nil
}

// edgeLabel lists the name mappings the consumer reads from this producer,
// e.g. "data → x".
func edgeLabel(producer, consumer *Node) string {
	if producer == nil {
		return ""
	}

	produced := make(map[string]struct{}, len(producer.Outputs))
	for _, ctxName := range producer.Outputs {
		produced[ctxName] = struct{}{}
	}

	keys := make([]string, 0, len(consumer.Inputs))
	for k := range consumer.Inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var labels []string
	for _, key := range keys {
		name := key
		if _, plain, qualified := api.SplitBranchQualifiedName(key); qualified {
			name = plain
		}
		if _, ok := produced[name]; ok {
			labels = append(labels, fmt.Sprintf("%s → %s", key, consumer.Inputs[key]))
		}
	}
	return strings.Join(labels, "<br/>")
}

func mermaidQuote(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
