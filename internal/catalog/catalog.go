// Package catalog loads showcase records from the configured sources.
package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/matheuskafuri/folio/internal/classify"
	"github.com/matheuskafuri/folio/internal/config"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Fetcher reads the records of one source.
type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]Record, error)
}

// Fetchers maps a source type (json, yaml, rss, atom) to its Fetcher.
type Fetchers map[string]Fetcher

// FileFetcher reads JSON or YAML catalog files.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, source config.Source) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(source.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source.Name, err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source.Name, err)
	}
	return records, nil
}

// Decode parses a catalog document. YAML is a superset of JSON, so both
// formats go through the same decoder. The document is either a list of
// records or an object whose first list-valued field holds them
// (e.g. {"caseStudies": [...]}).
func Decode(data []byte) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var records []Record
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	case yaml.MappingNode:
		for i := 1; i < len(root.Content); i += 2 {
			if root.Content[i].Kind != yaml.SequenceNode {
				continue
			}
			var records []Record
			if err := root.Content[i].Decode(&records); err != nil {
				return nil, fmt.Errorf("field %q: %w", root.Content[i-1].Value, err)
			}
			return records, nil
		}
		return nil, fmt.Errorf("no list of records found")
	default:
		return nil, fmt.Errorf("expected a list or an object, got %s", kindName(root.Kind))
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unsupported node"
	}
}

// Result holds the records from every source plus the per-source errors.
// A failing source does not stop the others.
type Result struct {
	Records []Record
	Errors  []error

	// Incomplete lists, in source order, each kind with a source that could
	// not be fetched. Its stored snapshot should be kept.
	Incomplete []Kind
}

// Complete reports whether every source of kind was fetched.
func (r Result) Complete(kind Kind) bool {
	for _, k := range r.Incomplete {
		if k == kind {
			return false
		}
	}
	return true
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LoadAll fetches every source concurrently and returns records in source
// order. Records are stamped with their source's kind, invalid ones are
// dropped and reported, and uncategorized ones are classified.
func LoadAll(ctx context.Context, sources []config.Source, fetchers Fetchers) Result {
	perSource := make([][]Record, len(sources))
	perErr := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range sources {
		i, src := i, src
		f, ok := fetchers[src.Type]
		if !ok {
			perErr[i] = fmt.Errorf("source %q: no fetcher for type %q", src.Name, src.Type)
			continue
		}
		g.Go(func() error {
			records, err := f.Fetch(gctx, src)
			perSource[i], perErr[i] = records, err
			return nil
		})
	}
	_ = g.Wait()

	var (
		result Result
		seen   = map[Kind]map[int]string{}
	)
	for i, src := range sources {
		kind := Kind(src.Kind)
		if perErr[i] != nil {
			result.Errors = append(result.Errors, perErr[i])
			if result.Complete(kind) {
				result.Incomplete = append(result.Incomplete, kind)
			}
			continue
		}
		if seen[kind] == nil {
			seen[kind] = map[int]string{}
		}
		records, errs := normalize(src, perSource[i], seen[kind])
		result.Records = append(result.Records, records...)
		result.Errors = append(result.Errors, errs...)
	}
	return result
}

// normalize validates, stamps and classifies one source's records.
// Ids are unique per kind across sources; seen maps each id already taken
// to its source, and the first occurrence wins.
func normalize(src config.Source, records []Record, seen map[int]string) ([]Record, []error) {
	var (
		out  []Record
		errs []error
	)
	for _, r := range records {
		if err := recordValidator().Struct(r); err != nil {
			errs = append(errs, fmt.Errorf("source %q: record %d (%q): %w", src.Name, r.ID, r.Title, err))
			continue
		}
		if first, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("source %q: duplicate id %d (%q), already taken in %q", src.Name, r.ID, r.Title, first))
			continue
		}
		seen[r.ID] = src.Name

		r.Kind = Kind(src.Kind)
		r.Source = src.Name
		r.Category = classify.Of(string(r.Category), r.Role, r.Title)
		out = append(out, r)
	}
	return out, errs
}
