package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/amaumene/gallery/pkg/models"
	"github.com/amaumene/gallery/pkg/repository"
	"github.com/amaumene/gallery/pkg/schema"
)

func renderPieces(w io.Writer, s *schema.Schema[models.Piece], pieces []models.Piece) error {
	return writePieces(w, outputFormat, s, pieces)
}

func writePieces(w io.Writer, format string, s *schema.Schema[models.Piece], pieces []models.Piece) error {
	switch format {
	case "json", "yaml":
		docs := make([]map[string]any, 0, len(pieces))
		for _, p := range pieces {
			doc, err := s.Dump(p)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return encode(w, format, docs)
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPIECE\tSTYLE")
		for _, p := range pieces {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Label(), p.Style)
		}
		return tw.Flush()
	}
}

type inspectionView struct {
	ID     string         `json:"id" yaml:"id"`
	Valid  bool           `json:"valid" yaml:"valid"`
	Raw    map[string]any `json:"raw" yaml:"raw"`
	Issues []issueView    `json:"issues,omitempty" yaml:"issues,omitempty"`
}

type issueView struct {
	Path    string `json:"path" yaml:"path"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func writeInspections(w io.Writer, format string, inspections []repository.Inspection) error {
	switch format {
	case "json", "yaml":
		views := make([]inspectionView, 0, len(inspections))
		for _, ins := range inspections {
			v := inspectionView{ID: ins.ID, Valid: ins.Valid(), Raw: displayable(ins.Raw)}
			for _, is := range ins.Issues {
				v.Issues = append(v.Issues, issueView(is))
			}
			views = append(views, v)
		}
		return encode(w, format, views)
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tVALID\tISSUES")
		for _, ins := range inspections {
			msgs := make([]string, 0, len(ins.Issues))
			for _, is := range ins.Issues {
				if is.Path == "" {
					msgs = append(msgs, is.Message)
					continue
				}
				msgs = append(msgs, is.Path+": "+is.Message)
			}
			fmt.Fprintf(tw, "%s\t%t\t%s\n", ins.ID, ins.Valid(), strings.Join(msgs, "; "))
		}
		return tw.Flush()
	}
}

// displayable replaces the store identifier with its string form so every
// backend renders the same way.
func displayable(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == schema.IDField {
			v = schema.CanonicalID(v)
		}
		out[k] = v
	}
	return out
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
